package kycflow

import (
	"encoding/base64"
	"sync"
)

// Preview is a local handle on a selected image, available before the relay answers.
// Release runs the owner's cleanup hook at most once.
type Preview struct {
	FileName string
	MimeType string

	mu       sync.Mutex
	data     []byte
	released bool
	release  func()
}

func NewPreview(up Upload, release func()) *Preview {
	return &Preview{
		FileName: up.FileName,
		MimeType: up.MimeType,
		data:     up.Data,
		release:  release,
	}
}

// DataURI renders the image inline; empty once released.
func (p *Preview) DataURI() string {
	if p == nil {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ""
	}
	mimeType := p.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(p.data)
}

// Released reports whether Release has run.
func (p *Preview) Released() bool {
	if p == nil {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

func (p *Preview) Release() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return
	}
	p.released = true
	p.data = nil
	hook := p.release
	p.mu.Unlock()

	if hook != nil {
		hook()
	}
}
