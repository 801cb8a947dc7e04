package assignment

import "strings"

// SubmissionType is how the student hands work in.
type SubmissionType string

const (
	SubmitFile  SubmissionType = "file"
	SubmitPhoto SubmissionType = "photo"
	SubmitPaper SubmissionType = "paper"
	SubmitLink  SubmissionType = "link"
)

// SubmissionChannel is where the work is handed in.
type SubmissionChannel string

const (
	ChannelInApp     SubmissionChannel = "in_app"
	ChannelClassroom SubmissionChannel = "classroom"
	ChannelInPerson  SubmissionChannel = "in_person"
)

var imageFormats = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "heic": true, "gif": true, "webp": true, "image": true, "photo": true,
}

var linkFormats = map[string]bool{
	"link": true, "url": true,
}

// InferSubmission guesses how and where an assignment is submitted from its
// free-form fields. It never fails; unknown input lands on file / in-app.
func InferSubmission(a Assignment) (SubmissionType, SubmissionChannel) {
	channel := inferChannel(a.Channel)

	switch SubmissionType(strings.ToLower(strings.TrimSpace(a.SubmissionType))) {
	case SubmitFile:
		return SubmitFile, channel
	case SubmitPhoto:
		return SubmitPhoto, channel
	case SubmitPaper:
		return SubmitPaper, channel
	case SubmitLink:
		return SubmitLink, channel
	}

	hasFormats := false
	photo, link := false, false
	for _, f := range a.Formats {
		f = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f), "."))
		if f == "" {
			continue
		}
		hasFormats = true
		photo = photo || imageFormats[f]
		link = link || linkFormats[f]
	}

	switch {
	case photo:
		return SubmitPhoto, channel
	case link:
		return SubmitLink, channel
	case channel == ChannelInPerson && !hasFormats:
		return SubmitPaper, channel
	}
	return SubmitFile, channel
}

func inferChannel(raw string) SubmissionChannel {
	c := strings.ToLower(raw)
	switch {
	case strings.Contains(c, "classroom"):
		return ChannelClassroom
	case strings.Contains(c, "person"), strings.Contains(c, "paper"), strings.Contains(c, "hand"):
		return ChannelInPerson
	default:
		return ChannelInApp
	}
}
