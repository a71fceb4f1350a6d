// Package feature implements favorites and the daily featured
// content picks.
package feature

import (
	"github.com/otabekh/minbar/internal/auth"
	"github.com/otabekh/minbar/internal/domain"
	"github.com/otabekh/minbar/internal/logger"
	"github.com/otabekh/minbar/internal/store"
)

type Service struct {
	store    *store.DB
	operator auth.Operator
	log      *logger.Logger
}

func NewService(db *store.DB, operator auth.Operator, log *logger.Logger) *Service {
	return &Service{
		store:    db,
		operator: operator,
		log:      log.WithComponent("feature"),
	}
}

// ToggleFavoriteTrack flips the membership and reports the new state,
// which the caller uses to pick the next control to show.
func (s *Service) ToggleFavoriteTrack(userID, trackID int64) (nowFavorite bool, err error) {
	isFav, err := s.store.IsFavoriteTrack(userID, trackID)
	if err != nil {
		return false, err
	}
	if isFav {
		return false, s.store.RemoveFavoriteTrack(userID, trackID)
	}
	return true, s.store.AddFavoriteTrack(userID, trackID)
}

func (s *Service) ToggleFavoriteSong(userID, songID int64) (nowFavorite bool, err error) {
	isFav, err := s.store.IsFavoriteSong(userID, songID)
	if err != nil {
		return false, err
	}
	if isFav {
		return false, s.store.RemoveFavoriteSong(userID, songID)
	}
	return true, s.store.AddFavoriteSong(userID, songID)
}

func (s *Service) FavoriteTracks(userID int64) ([]*domain.Track, error) {
	return s.store.ListFavoriteTracks(userID)
}

func (s *Service) FavoriteSongs(userID int64) ([]*domain.Song, error) {
	return s.store.ListFavoriteSongs(userID)
}

// TrackOfDay returns today's featured track. featured is false when
// no pick is set for today; the caller then offers RandomTrack.
func (s *Service) TrackOfDay() (track *domain.Track, featured bool, err error) {
	track, err = s.store.FeaturedTrack()
	if err != nil {
		return nil, false, err
	}
	if track == nil {
		return nil, false, nil
	}
	return track, true, nil
}

func (s *Service) SongOfDay() (song *domain.Song, featured bool, err error) {
	song, err = s.store.FeaturedSong()
	if err != nil {
		return nil, false, err
	}
	if song == nil {
		return nil, false, nil
	}
	return song, true, nil
}

func (s *Service) RandomTrack() (*domain.Track, error) {
	return s.store.RandomTrack()
}

func (s *Service) RandomSong() (*domain.Song, error) {
	return s.store.RandomSong()
}

// SetTrackOfDay pins a track as today's feature. Operator only.
func (s *Service) SetTrackOfDay(callerID, trackID int64) error {
	if err := s.operator.Require(callerID); err != nil {
		return err
	}
	if _, err := s.store.GetTrack(trackID); err != nil {
		return err
	}
	s.log.Info("featured track set", "track_id", trackID)
	return s.store.SetFeaturedTrack(trackID)
}

func (s *Service) SetSongOfDay(callerID, songID int64) error {
	if err := s.operator.Require(callerID); err != nil {
		return err
	}
	if _, err := s.store.GetSong(songID); err != nil {
		return err
	}
	s.log.Info("featured song set", "song_id", songID)
	return s.store.SetFeaturedSong(songID)
}

// RecordTrackPlay bumps the play counter when a track is delivered.
func (s *Service) RecordTrackPlay(trackID int64) {
	if err := s.store.IncrementTrackPlays(trackID); err != nil {
		s.log.Warn("failed to record track play", "track_id", trackID, "error", err)
	}
}

func (s *Service) RecordSongPlay(songID int64) {
	if err := s.store.IncrementSongPlays(songID); err != nil {
		s.log.Warn("failed to record song play", "song_id", songID, "error", err)
	}
}
