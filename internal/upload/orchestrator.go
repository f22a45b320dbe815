package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"lookbook/internal/models"
)

// Result describes one finished upload run, successful or not.
type Result struct {
	UploadID    string              `json:"upload_id"`
	State       State               `json:"state"`
	ImageID     string              `json:"image_id,omitempty"`
	ArtistID    string              `json:"artist_id,omitempty"`
	ItemIDs     []string            `json:"item_ids,omitempty"`
	BrandIDs    []string            `json:"brand_ids,omitempty"`
	TaggedItems []models.TaggedItem `json:"tagged_items,omitempty"`
	Propagation PropagationResult   `json:"propagation"`
}

// Orchestrator runs the upload workflow. One upload may be in flight at a time.
type Orchestrator struct {
	items    *ItemCommitter
	image    *ImageCommitter
	backrefs *Propagator
	policy   Policy
	allowed  mediaTypeSet
	logger   *slog.Logger
	newID    func() string

	mu        sync.Mutex
	state     State
	current   string // upload id that owns the orchestrator
	observers []func(Transition)
}

// Option customizes an Orchestrator.
type Option func(*options)

type options struct {
	policy Policy
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

func WithPolicy(p Policy) Option            { return func(o *options) { o.policy = p } }
func WithLogger(l *slog.Logger) Option      { return func(o *options) { o.logger = l } }
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// WithIDGenerator replaces the uuid-based upload id source.
func WithIDGenerator(fn func() string) Option { return func(o *options) { o.newID = fn } }

// NewOrchestrator wires the workflow over its collaborators.
func NewOrchestrator(docs DocumentWriter, blobs BlobWriter, images ImageProcessor, opts ...Option) *Orchestrator {
	o := options{policy: DefaultPolicy(), logger: slog.Default(), now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	policy := o.policy.withDefaults()
	logger := o.logger.With("component", "upload")

	return &Orchestrator{
		items:    NewItemCommitter(docs, blobs, images, policy, o.logger),
		image:    NewImageCommitter(docs, blobs, images, policy, o.now, o.logger),
		backrefs: NewPropagator(docs, policy.PropagationConcurrency, o.logger),
		policy:   policy,
		allowed:  newMediaTypeSet(policy.AllowedItemMediaTypes),
		logger:   logger,
		newID:    o.newID,
		state:    StateIdle,
	}
}

// Policy returns the effective policy.
func (o *Orchestrator) Policy() Policy {
	return o.policy
}

// AllowedItemMediaTypes returns the normalized allow-list, sorted.
func (o *Orchestrator) AllowedItemMediaTypes() []string {
	return o.allowed.sorted()
}

// OnTransition registers fn to be called synchronously on every state change.
func (o *Orchestrator) OnTransition(fn func(Transition)) {
	if fn == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// State returns the current workflow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Upload runs the whole workflow for req. On failure the returned Result
// still carries whatever identifiers and propagation outcomes were reached.
// Writes made before a failure are kept.
func (o *Orchestrator) Upload(ctx context.Context, req Request) (Result, error) {
	uploadID := o.newID()
	if !o.begin(uploadID) {
		return Result{}, ErrUploadInProgress
	}

	defer o.release(uploadID)

	res := Result{UploadID: uploadID}
	logger := o.logger.With("upload_id", uploadID)
	started := time.Now()

	err := o.run(ctx, uploadID, req, &res)

	final := StateDone
	if err != nil {
		final = StateFailed
	}
	o.transition(uploadID, final, err)
	res.State = final

	if err != nil {
		logger.Warn("upload failed", "state", final, "duration", time.Since(started), "err", err)
	} else {
		logger.Info("upload done",
			"image_id", res.ImageID,
			"items", len(res.ItemIDs),
			"brands", len(res.BrandIDs),
			"duration", time.Since(started),
		)
	}

	o.transition(uploadID, StateIdle, nil)
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, uploadID string, req Request, res *Result) error {
	if o.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.policy.Timeout)
		defer cancel()
	}

	if err := o.validate(req); err != nil {
		return err
	}

	o.transition(uploadID, StateBuildingTags, nil)
	graph, err := BuildTags(req.Regions, req.Artist, req.Image)
	if err != nil {
		return err
	}
	res.ImageID = graph.ImageID()
	res.ArtistID = graph.ArtistID()
	res.ItemIDs = graph.Items()
	res.BrandIDs = graph.Brands()

	o.transition(uploadID, StateCommittingItems, nil)
	if err := interrupted(ctx, StepCommitItems); err != nil {
		return err
	}
	tagged, err := o.items.Commit(ctx, graph, req.Regions)
	res.TaggedItems = tagged
	if err != nil {
		return err
	}

	o.transition(uploadID, StateCommittingImage, nil)
	if err := interrupted(ctx, StepCommitImage); err != nil {
		return err
	}
	if _, err := o.image.Commit(ctx, graph, req, tagged); err != nil {
		return err
	}

	o.transition(uploadID, StatePropagatingBackrefs, nil)
	res.Propagation = o.backrefs.Propagate(ctx, graph)
	err = res.Propagation.Err()
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		// Merges cut short by the deadline are a timeout, not a partial write.
		return &RemoteWriteError{Step: StepPropagate, Region: -1, Err: ctxErr}
	}
	return err
}

// validate checks every input before anything is written.
func (o *Orchestrator) validate(req Request) error {
	switch {
	case len(req.Image) == 0:
		return &ValidationError{Field: "image", Reason: "is required"}
	case strings.TrimSpace(req.FileName) == "":
		return &ValidationError{Field: "file_name", Reason: "is required"}
	case strings.TrimSpace(req.Title) == "":
		return &ValidationError{Field: "title", Reason: "is required"}
	case strings.TrimSpace(req.Artist) == "":
		return &ValidationError{Field: "artist", Reason: "is required"}
	case strings.TrimSpace(req.Description) == "":
		return &ValidationError{Field: "description", Reason: "is required"}
	case len(req.Description) > o.policy.DescriptionMaxBytes:
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("exceeds %d bytes", o.policy.DescriptionMaxBytes)}
	case !utf8.ValidString(req.Description):
		return &ValidationError{Field: "description", Reason: "must be valid UTF-8"}
	case len(req.Regions) == 0:
		return &ValidationError{Field: "regions", Reason: "at least one tagged region is required"}
	}

	for i, region := range req.Regions {
		field := func(name string) string { return fmt.Sprintf("regions[%d].%s", i, name) }
		if !models.ValidPosition(region.Position) {
			return &ValidationError{Field: field("pos"), Reason: fmt.Sprintf("must lie within %d..%d", models.PositionMin, models.PositionMax)}
		}
		if strings.TrimSpace(region.Item.Name) == "" {
			return &ValidationError{Field: field("item.name"), Reason: "is required"}
		}
		if !hasBrand(region.Brands) {
			return &ValidationError{Field: field("brands"), Reason: "at least one brand is required"}
		}
		if region.Item.Price.Currency != "" {
			if _, err := models.ParseCurrency(string(region.Item.Price.Currency)); err != nil {
				return &ValidationError{Field: field("item.price.currency"), Reason: err.Error()}
			}
		}
		if region.Item.Category != "" {
			if _, err := models.ParseItemCategory(string(region.Item.Category)); err != nil {
				return &ValidationError{Field: field("item.category"), Reason: err.Error()}
			}
		}
		if len(region.Image) == 0 {
			return &ValidationError{Field: field("image"), Reason: "is required"}
		}
	}

	for i, region := range req.Regions {
		if mediaType := regionMediaType(region); !o.allowed.allows(mediaType) {
			return &FormatError{Region: i, MediaType: mediaType}
		}
	}
	return nil
}

func hasBrand(brands []string) bool {
	for _, b := range brands {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

// interrupted converts an expired or cancelled context into a RemoteWriteError.
func interrupted(ctx context.Context, step Step) error {
	if err := ctx.Err(); err != nil {
		return &RemoteWriteError{Step: step, Region: -1, Err: err}
	}
	return nil
}

// begin claims the orchestrator for one run.
func (o *Orchestrator) begin(uploadID string) bool {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return false
	}
	o.state = StateValidating
	o.current = uploadID
	observers := o.snapshotObservers()
	o.mu.Unlock()

	o.notify(observers, Transition{UploadID: uploadID, From: StateIdle, To: StateValidating})
	return true
}

func (o *Orchestrator) transition(uploadID string, to State, cause error) {
	o.mu.Lock()
	from := o.state
	if !canTransition(from, to) {
		o.mu.Unlock()
		o.logger.Error("invalid upload state transition", "upload_id", uploadID, "from", from, "to", to)
		return
	}
	o.state = to
	observers := o.snapshotObservers()
	o.mu.Unlock()

	o.logger.Debug("upload state", "upload_id", uploadID, "from", from, "to", to)
	o.notify(observers, Transition{UploadID: uploadID, From: from, To: to, Err: cause})
}

// snapshotObservers copies the observer list; callers hold o.mu.
func (o *Orchestrator) snapshotObservers() []func(Transition) {
	out := make([]func(Transition), len(o.observers))
	copy(out, o.observers)
	return out
}

// release ends uploadID's claim. A run that unwound by panic is forced back
// to idle; a run that already finished may have been followed by another.
func (o *Orchestrator) release(uploadID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != uploadID {
		return
	}
	o.current = ""
	o.state = StateIdle
}

func (o *Orchestrator) notify(observers []func(Transition), t Transition) {
	for _, fn := range observers {
		o.observe(fn, t)
	}
}

// observe calls one observer; a panic is logged and the run carries on.
func (o *Orchestrator) observe(fn func(Transition), t Transition) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("upload observer panicked", "upload_id", t.UploadID, "from", t.From, "to", t.To, "panic", r)
		}
	}()
	fn(t)
}

// IsClientError reports whether err was caused by the request itself.
func IsClientError(err error) bool {
	var validation *ValidationError
	var format *FormatError
	return errors.As(err, &validation) || errors.As(err, &format)
}
