package service

import (
	"context"
	"mime"
	"strings"
	"time"

	"exam-feedback/pkg/feedback"
	"exam-feedback/pkg/model"
	"exam-feedback/pkg/util"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// SubmissionSource is the learning-management platform.
type SubmissionSource interface {
	ListSubmissions(ctx context.Context) ([]model.Submission, error)
	PostGrade(ctx context.Context, userID, grade, comment string) error
	UserProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, filename string, pdf []byte) (string, error)
}

type FeedbackDispatcher interface {
	Dispatch(ctx context.Context, label model.Classification, transcript string) (*model.FeedbackResult, error)
}

type AuditSink interface {
	Append(ctx context.Context, row model.AuditRow) error
}

// Outcome is the final state of one processed submission.
type Outcome int

const (
	OutcomeCompleted  Outcome = iota // feedback and complete grade posted
	OutcomeIncomplete                // advisory comment and incomplete grade posted
	OutcomeUnposted                  // failed, nothing posted
)

type RunStats struct {
	Listed     int
	Eligible   int
	Completed  int
	Incomplete int
	Unposted   int
}

type PipelineOptions struct {
	CourseID            string
	AssignmentID        string
	AllowedContentTypes []string
	// DryRun processes everything but only logs grades and audit rows.
	DryRun bool
	// OnlyUsers restricts the run to these Canvas user ids when non-empty.
	OnlyUsers []string
	Now       func() time.Time
}

// SubmissionPipeline runs one grading pass over an assignment. Submissions
// are handled one at a time and a failure never stops the run.
type SubmissionPipeline struct {
	source      SubmissionSource
	transcriber Transcriber
	classifier  *Classifier
	dispatcher  FeedbackDispatcher
	audit       AuditSink
	opts        PipelineOptions
}

func NewSubmissionPipeline(source SubmissionSource, transcriber Transcriber, classifier *Classifier,
	dispatcher FeedbackDispatcher, audit AuditSink, opts PipelineOptions) *SubmissionPipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.AllowedContentTypes) == 0 {
		opts.AllowedContentTypes = []string{"application/pdf"}
	}
	return &SubmissionPipeline{
		source:      source,
		transcriber: transcriber,
		classifier:  classifier,
		dispatcher:  dispatcher,
		audit:       audit,
		opts:        opts,
	}
}

// Run lists submissions and processes every eligible one. Only a listing
// failure or context cancellation ends the run early.
func (p *SubmissionPipeline) Run(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}
	submissions, err := p.source.ListSubmissions(ctx)
	if err != nil {
		return stats, errors.Wrap(err, "list submissions")
	}
	stats.Listed = len(submissions)

	eligible := lo.Filter(submissions, func(sub model.Submission, _ int) bool {
		if len(p.opts.OnlyUsers) > 0 && !lo.Contains(p.opts.OnlyUsers, sub.UserID) {
			return false
		}
		ok, reason := checkEligibility(sub)
		if !ok {
			zap.S().Infof("Skipping student %s - %s", sub.UserID, reason)
		}
		return ok
	})
	stats.Eligible = len(eligible)
	zap.S().Infof("%d of %d submissions need processing", stats.Eligible, stats.Listed)

	for _, sub := range eligible {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		switch p.ProcessSubmission(ctx, sub) {
		case OutcomeCompleted:
			stats.Completed++
		case OutcomeIncomplete:
			stats.Incomplete++
		default:
			stats.Unposted++
		}
	}
	return stats, ctx.Err()
}

// ProcessSubmission runs one eligible submission end to end.
func (p *SubmissionPipeline) ProcessSubmission(ctx context.Context, sub model.Submission) Outcome {
	log := zap.S().With("user_id", sub.UserID)

	latest, result, err := p.generate(ctx, sub)
	if err == nil {
		err = p.post(ctx, sub.UserID, model.GradeComplete, result.FeedbackHTML)
	}
	if err != nil {
		if ctx.Err() != nil {
			log.Warnf("interrupted: %v", err)
			return OutcomeUnposted
		}
		return p.fail(ctx, sub.UserID, err)
	}
	log.Infof("posted %s feedback (%s)", result.ResponseType, result.Subject)

	p.appendAudit(ctx, sub.UserID, latest, result)
	return OutcomeCompleted
}

func (p *SubmissionPipeline) generate(ctx context.Context, sub model.Submission) (model.Attempt, *model.FeedbackResult, error) {
	latest, ok := model.LatestAttempt(sub.History)
	if !ok {
		return latest, nil, errors.Wrap(ErrMissingAttachment, "empty history")
	}
	attachment, ok := latest.FirstAttachment()
	if !ok || attachment.URL == "" {
		return latest, nil, errors.Wrap(ErrMissingAttachment, "no attachment")
	}
	if !p.accepts(attachment.ContentType) {
		return latest, nil, errors.Wrapf(ErrMissingAttachment, "content type %q", attachment.ContentType)
	}

	pdf, err := p.source.Download(ctx, attachment.URL)
	if err != nil {
		return latest, nil, err
	}
	zap.S().Infof("Downloaded %s (%d bytes) for student %s", attachment.Filename, len(pdf), sub.UserID)

	filename := attachment.Filename
	if filename == "" {
		filename = "submission.pdf"
	}
	transcript, err := p.transcriber.Transcribe(ctx, filename, pdf)
	if err != nil {
		return latest, nil, errors.Wrap(err, "transcribe")
	}

	label := p.classifier.Classify(transcript)
	zap.S().Infof("Student %s classified as %s / %s", sub.UserID, label.Subject, label.Length)
	result, err := p.dispatcher.Dispatch(ctx, label, transcript)
	if err != nil {
		return latest, nil, err
	}
	return latest, result, nil
}

func (p *SubmissionPipeline) accepts(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}
	return lo.ContainsBy(p.opts.AllowedContentTypes, func(t string) bool {
		return strings.EqualFold(t, mediaType)
	})
}

func (p *SubmissionPipeline) post(ctx context.Context, userID, grade, comment string) error {
	if p.opts.DryRun {
		zap.S().Infof("[dry-run] would post grade %q to student %s (%d chars of comment)", grade, userID, len(comment))
		return nil
	}
	return p.source.PostGrade(ctx, userID, grade, comment)
}

func (p *SubmissionPipeline) fail(ctx context.Context, userID string, cause error) Outcome {
	advice := Advise(cause)
	log := zap.S().With("user_id", userID)
	if code := util.StatusCode(cause); code != 0 {
		log = log.With("status", code)
	}

	var malformed *feedback.MalformedOutputError
	if errors.As(cause, &malformed) {
		log.Errorf("%v; raw output: %s", cause, malformed.Raw)
	} else if advice.Post {
		log.Warnf("%s: %v", advice.Reason, cause)
	} else {
		log.Errorf("%s: %v", advice.Reason, cause)
	}

	if !advice.Post {
		return OutcomeUnposted
	}
	if err := p.post(ctx, userID, advice.Grade, advice.Comment); err != nil {
		log.Errorf("Error submitting %s grade: %v", advice.Grade, err)
		return OutcomeUnposted
	}
	log.Infof("Submitted %s grade (%s)", advice.Grade, advice.Reason)
	return OutcomeIncomplete
}

// appendAudit logs a posted result. Failures here never undo the grade.
func (p *SubmissionPipeline) appendAudit(ctx context.Context, userID string, latest model.Attempt, result *model.FeedbackResult) {
	log := zap.S().With("user_id", userID)

	row := model.AuditRow{
		ID:           model.AuditRowID(p.opts.CourseID, p.opts.AssignmentID, userID, latest.Attempt),
		LoggedAt:     p.opts.Now().UTC(),
		CourseID:     p.opts.CourseID,
		AssignmentID: p.opts.AssignmentID,
		CanvasUserID: userID,
		Attempt:      latest.Attempt,
		SISUserID:    "Unknown",
		Name:         "Unknown",
		Subject:      result.Subject,
		ResponseType: result.ResponseType,
		Question:     result.Question,
		TeacherEmail: result.TeacherEmail,
	}
	if profile, err := p.source.UserProfile(ctx, userID); err != nil {
		log.Warnf("fetch profile for audit row: %v", err)
	} else {
		row.SISUserID = lo.CoalesceOrEmpty(profile.SISUserID, row.SISUserID)
		row.Name = lo.CoalesceOrEmpty(profile.Name, row.Name)
	}

	if p.opts.DryRun {
		log.Infof("[dry-run] would log audit row %s", row.ID)
		return
	}
	if p.audit == nil {
		return
	}
	if err := p.audit.Append(ctx, row); err != nil {
		log.Warnf("Error logging feedback: %v", err)
	}
}
