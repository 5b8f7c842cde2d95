package question

import "image"

// picturesLoadedMsg carries the decoded images for one question.
type picturesLoadedMsg struct {
	Index    int
	Pictures map[string]image.Image
}
