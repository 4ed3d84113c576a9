package service

import (
	"github.com/pkg/errors"
)

var (
	// ErrMissingAttachment means the latest attempt has no attachment of an
	// accepted document type.
	ErrMissingAttachment = errors.New("no valid document attachment")
	// ErrUnclassifiable means no feedback strategy matches the transcript.
	ErrUnclassifiable = errors.New("unable to classify response")
	// ErrAmbiguousResponseLength means both response-length markers were
	// found. It matches ErrUnclassifiable under errors.Is.
	ErrAmbiguousResponseLength = errors.Wrap(ErrUnclassifiable, "both short and long response markers present")
)
