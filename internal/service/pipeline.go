package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taskwise/taskwise/internal/extract"
	"github.com/taskwise/taskwise/internal/llm"
	"github.com/taskwise/taskwise/internal/metrics"
	"github.com/taskwise/taskwise/internal/model"
	"github.com/taskwise/taskwise/internal/prompt"
	"github.com/taskwise/taskwise/internal/sanitize"
)

// Pipeline turns natural-language instructions into task writes:
// prompt, generate, extract, validate, persist.
type Pipeline struct {
	tasks     *TaskService
	generator llm.Generator
	extractor extract.Extractor
	sanitizer *sanitize.Text
	// stripMarkup rewrites generated text. Off by default: text is stored as extracted.
	stripMarkup bool
	logger      *slog.Logger
	metrics     metrics.Recorder
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithMarkupStripping removes HTML elements from generated titles and descriptions before they are stored.
func WithMarkupStripping() PipelineOption {
	return func(p *Pipeline) {
		p.stripMarkup = true
	}
}

// NewPipeline creates a Pipeline. A nil extractor means extract.Greedy.
func NewPipeline(tasks *TaskService, generator llm.Generator, extractor extract.Extractor, logger *slog.Logger, recorder metrics.Recorder, opts ...PipelineOption) *Pipeline {
	if extractor == nil {
		extractor = extract.Greedy{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	p := &Pipeline{
		tasks:     tasks,
		generator: generator,
		extractor: extractor,
		sanitizer: sanitize.New(),
		logger:    logger.With("component", "service.pipeline"),
		metrics:   recorder,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateFromInstruction asks the model for a task described by message and stores it for userID.
func (p *Pipeline) CreateFromInstruction(ctx context.Context, userID, message string) (*model.Task, error) {
	draft, err := p.draft(ctx, message)
	if err != nil {
		return nil, err
	}

	task, err := p.tasks.CreateTask(ctx, userID, *draft)
	if err != nil {
		return nil, generatedErr(err)
	}

	p.logger.Info("task created from instruction", "task_id", task.ID, "user_id", userID)
	return task, nil
}

// UpdateFromInstruction asks the model which fields instruction changes and applies them.
// Fields the model returns as null are left untouched.
func (p *Pipeline) UpdateFromInstruction(ctx context.Context, callerID, taskID, instruction string) (*model.Task, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, ErrTaskIDRequired
	}

	text, err := prompt.Build(prompt.ModeUpdate, instruction)
	if err != nil {
		return nil, ErrInstructionRequired
	}

	// Fail fast on unknown ids before paying for a model call.
	if _, err := p.tasks.lookup(ctx, callerID, taskID); err != nil {
		return nil, err
	}

	fields, err := p.generateFields(ctx, text)
	if err != nil {
		return nil, err
	}

	patch, err := extract.DecodeUpdate(fields)
	if err != nil {
		p.recordExtractionFailure(err, "")
		return nil, err
	}
	p.sanitizePatch(&patch)

	task, err := p.tasks.UpdateTask(ctx, callerID, taskID, patch)
	if err != nil {
		return nil, generatedErr(err)
	}

	p.logger.Info("task updated from instruction", "task_id", task.ID)
	return task, nil
}

// DraftFromInstruction runs the create flow without storing anything.
func (p *Pipeline) DraftFromInstruction(ctx context.Context, message string) (*model.TaskDraft, error) {
	draft, err := p.draft(ctx, message)
	if err != nil {
		return nil, err
	}

	// Surface domain problems the same way the create flow would.
	if err := draft.NewTask("draft").Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGeneratedTask, err)
	}
	return draft, nil
}

// Chat forwards message to the model unchanged and returns its reply.
func (p *Pipeline) Chat(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrInvalidMessage
	}
	return p.generate(ctx, message)
}

func (p *Pipeline) draft(ctx context.Context, message string) (*model.TaskDraft, error) {
	text, err := prompt.Build(prompt.ModeCreate, message)
	if err != nil {
		return nil, ErrInvalidMessage
	}

	fields, err := p.generateFields(ctx, text)
	if err != nil {
		return nil, err
	}

	draft, err := extract.DecodeCreate(fields)
	if err != nil {
		p.recordExtractionFailure(err, "")
		return nil, err
	}

	draft.Title = p.checkText(extract.FieldTitle, draft.Title)
	draft.Description = p.checkText(extract.FieldDescription, draft.Description)
	return draft, nil
}

// generateFields calls the model and extracts one JSON object from its reply.
func (p *Pipeline) generateFields(ctx context.Context, text string) (map[string]any, error) {
	reply, err := p.generate(ctx, text)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("raw model reply", "reply", reply)

	fields, err := p.extractor.Extract(reply)
	if err != nil {
		p.recordExtractionFailure(err, reply)
		return nil, err
	}
	return fields, nil
}

func (p *Pipeline) generate(ctx context.Context, text string) (string, error) {
	reply, err := p.generator.Generate(ctx, text)
	if err != nil {
		if !errors.Is(err, llm.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %v", llm.ErrGenerationFailed, err)
		}
		return "", err
	}
	return reply, nil
}

func (p *Pipeline) sanitizePatch(patch *model.TaskPatch) {
	if patch.Title != nil {
		title := p.checkText(extract.FieldTitle, *patch.Title)
		patch.Title = &title
	}
	if patch.Description != nil {
		description := p.checkText(extract.FieldDescription, *patch.Description)
		patch.Description = &description
	}
}

// checkText logs generated text that looks like markup.
// It is only rewritten when markup stripping is enabled.
func (p *Pipeline) checkText(field, text string) string {
	if !p.sanitizer.ContainsMarkup(text) {
		return text
	}
	if !p.stripMarkup {
		p.logger.Debug("generated text contains markup", "field", field)
		return text
	}
	p.logger.Warn("stripping markup from generated text", "field", field)
	return p.sanitizer.Clean(text)
}

func (p *Pipeline) recordExtractionFailure(err error, reply string) {
	reason := "invalid_field"
	switch {
	case errors.Is(err, extract.ErrNoJSONFound):
		reason = "no_json"
	case errors.Is(err, extract.ErrMalformedJSON):
		reason = "malformed"
	case errors.Is(err, extract.ErrMissingRequiredField):
		reason = "missing_field"
	}
	p.metrics.IncExtractionFailure(reason)

	attrs := []any{"reason", reason, "error", err}
	if reply != "" {
		attrs = append(attrs, "reply", reply)
	}
	p.logger.Warn("could not use model reply", attrs...)
}

// generatedErr reclassifies validation failures on model output as server-side errors.
func generatedErr(err error) error {
	if errors.Is(err, ErrInvalidTask) {
		return fmt.Errorf("%w: %w", ErrInvalidGeneratedTask, err)
	}
	return err
}
