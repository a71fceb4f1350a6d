package media

import (
	"fmt"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// TagInfo holds what could be read from an MP3 file's ID3 header.
// Fields are empty when the file carries no tag, which is common for
// archive submissions.
type TagInfo struct {
	Title  string
	Artist string
	HasTag bool
}

// ProbeMP3 opens an MP3 file and reads its ID3v2 tag if present. A
// file that cannot be opened as MP3 at all yields an error; a readable
// file without a tag is not an error.
func ProbeMP3(path string) (TagInfo, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return TagInfo{}, fmt.Errorf("probing %s: %w", path, err)
	}
	defer func() {
		_ = tag.Close()
	}()

	info := TagInfo{
		Title:  strings.TrimSpace(tag.Title()),
		Artist: strings.TrimSpace(tag.Artist()),
	}
	info.HasTag = info.Title != "" || info.Artist != ""
	return info, nil
}
