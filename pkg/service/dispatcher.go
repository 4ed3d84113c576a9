package service

import (
	"context"

	"exam-feedback/pkg/feedback"
	"exam-feedback/pkg/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Strategy produces raw feedback output for a transcript.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, transcript string) (string, error)
}

type dispatchKey struct {
	subject model.SubjectCategory
	length  model.ResponseLength
}

// Dispatcher selects exactly one Strategy per classification. General
// transcripts are routed by response length; specialized subjects go to
// their own strategy whatever the length.
type Dispatcher struct {
	table    map[dispatchKey]Strategy
	subjects map[model.SubjectCategory]Strategy
}

func NewDispatcher(short, long Strategy) *Dispatcher {
	return &Dispatcher{
		table: map[dispatchKey]Strategy{
			{model.SubjectGeneral, model.LengthShort}: short,
			{model.SubjectGeneral, model.LengthLong}:  long,
		},
		subjects: make(map[model.SubjectCategory]Strategy),
	}
}

// RegisterSubject routes every transcript of subject to s.
func (d *Dispatcher) RegisterSubject(subject model.SubjectCategory, s Strategy) {
	d.subjects[subject] = s
}

// Select returns the strategy for label without invoking it.
func (d *Dispatcher) Select(label model.Classification) (Strategy, error) {
	if !label.Subject.IsGeneral() {
		if s, ok := d.subjects[label.Subject]; ok {
			return s, nil
		}
		return nil, errors.Wrapf(ErrUnclassifiable, "no strategy registered for subject %q", label.Subject)
	}
	if label.Ambiguous {
		return nil, ErrAmbiguousResponseLength
	}
	if s, ok := d.table[dispatchKey{model.SubjectGeneral, label.Length}]; ok && s != nil {
		return s, nil
	}
	return nil, errors.Wrapf(ErrUnclassifiable, "response length %s", label.Length)
}

// Dispatch invokes the selected strategy once and validates its output.
// Output that does not parse comes back as *feedback.MalformedOutputError.
func (d *Dispatcher) Dispatch(ctx context.Context, label model.Classification, transcript string) (*model.FeedbackResult, error) {
	s, err := d.Select(label)
	if err != nil {
		return nil, err
	}
	zap.S().Debugf("dispatching %s/%s to %s", label.Subject, label.Length, s.Name())
	raw, err := s.Generate(ctx, transcript)
	if err != nil {
		return nil, err
	}
	return feedback.ParseResult(s.Name(), raw)
}
