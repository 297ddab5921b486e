package lifecycle

import (
	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
)

// Access is what a requester may see of a project's files.
type Access int

const (
	AccessNone Access = iota
	AccessPreview
	AccessFull
)

func (a Access) String() string {
	switch a {
	case AccessPreview:
		return "preview"
	case AccessFull:
		return "full"
	default:
		return "none"
	}
}

// Rendition selects which stored object is served for a file.
type Rendition string

const (
	RenditionOriginal Rendition = "original"
	RenditionPreview  Rendition = "preview"
)

// ResolveAccess decides file access from project status and requester identity.
// The owning freelancer always has full access; everyone else needs the
// project's client email.
func ResolveAccess(p *models.Project, r Requester) Access {
	if r.Owns(p) {
		return AccessFull
	}
	if !p.IsClient(r.Email) {
		return AccessNone
	}

	switch p.Status {
	case models.ProjectStatusPreview, models.ProjectStatusApproved:
		return AccessPreview
	case models.ProjectStatusPaid, models.ProjectStatusDelivered:
		return AccessFull
	case models.ProjectStatusDraft, models.ProjectStatusCancelled:
		return AccessNone
	}
	return AccessNone
}

// SelectRendition picks the object to serve for a file at the given access
// level. Originals are only ever returned for AccessFull.
func SelectRendition(access Access, f *models.File) (Rendition, error) {
	switch access {
	case AccessFull:
		return RenditionOriginal, nil
	case AccessPreview:
		if f.FileType == models.FileTypePDF {
			return "", errs.PreviewLocked("PDF documents are available after payment")
		}
		if !f.PreviewAvailable() {
			return "", errs.PreviewLocked("no preview rendition for this file")
		}
		return RenditionPreview, nil
	case AccessNone:
		return "", errs.Forbidden("you do not have access to this file")
	}
	return "", errs.Forbidden("you do not have access to this file")
}

// PlaybackLimitReached reports whether a preview viewer has hit the project's
// configured time limit at the given playback position (seconds).
func PlaybackLimitReached(settings models.PreviewSettings, access Access, position float64) bool {
	if access != AccessPreview || settings.TimeLimit == nil || *settings.TimeLimit <= 0 {
		return false
	}
	return position >= float64(*settings.TimeLimit)
}
