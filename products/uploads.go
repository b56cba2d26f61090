package products

import (
	"bytes"
	"fmt"
	"log"

	"agroadmin/forms"
	"agroadmin/models"
	"agroadmin/session"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

const thumbWidth = 300

// staged is an image picked for the add product form, kept with its preview.
type staged struct {
	upload models.Upload
	thumb  []byte
}

func thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// Stage adds picked images to the add product form. Files of the wrong type or size, files
// that do not decode, and files past the five image limit are dropped. The staged list is
// returned.
func (s *Service) Stage(sess *session.Session, picked []models.Upload) []models.Upload {
	p := s.page(sess)
	p.mu.Lock()
	defer p.mu.Unlock()

	current := make([]models.Upload, len(p.staged))
	for i, st := range p.staged {
		current[i] = st.upload
	}
	accepted := forms.AcceptImages(current, picked)
	for _, up := range accepted[len(current):] {
		thumb, err := thumbnail(up.Data)
		if err != nil {
			log.Printf("[products] skip %s: %v", up.Name, err)
			continue
		}
		up.ID = uuid.NewString()
		p.staged = append(p.staged, staged{upload: up, thumb: thumb})
	}
	return p.stagedLocked()
}

// Unstage removes one staged image.
func (s *Service) Unstage(sess *session.Session, id string) bool {
	p := s.page(sess)
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, st := range p.staged {
		if st.upload.ID == id {
			p.staged = append(p.staged[:i:i], p.staged[i+1:]...)
			return true
		}
	}
	return false
}

// Preview returns the JPEG thumbnail of a staged image.
func (s *Service) Preview(sess *session.Session, id string) ([]byte, bool) {
	p := s.page(sess)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, st := range p.staged {
		if st.upload.ID == id {
			return st.thumb, true
		}
	}
	return nil, false
}

// Staged lists the images staged for the add product form.
func (s *Service) Staged(sess *session.Session) []models.Upload {
	return s.page(sess).stagedUploads()
}

func (p *Page) stagedLocked() []models.Upload {
	out := make([]models.Upload, len(p.staged))
	for i, st := range p.staged {
		out[i] = st.upload
	}
	return out
}

func (p *Page) stagedUploads() []models.Upload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stagedLocked()
}

func (p *Page) clearStaged() {
	p.mu.Lock()
	p.staged = nil
	p.mu.Unlock()
}
