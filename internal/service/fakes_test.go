package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vissocial/pipeline/internal/models"
	"github.com/vissocial/pipeline/internal/policy"
	"github.com/vissocial/pipeline/internal/transfer"
)

var errUnavailable = errors.New("unavailable")

type fakePackRepo struct {
	packs []*models.ContentPack
	err   error
}

func (f *fakePackRepo) Create(ctx context.Context, pack *models.ContentPack) error {
	if f.err != nil {
		return f.err
	}
	f.packs = append(f.packs, pack)
	return nil
}

func (f *fakePackRepo) GetByID(ctx context.Context, id string) (*models.ContentPack, error) {
	for _, p := range f.packs {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePackRepo) GetLatestByProjectID(ctx context.Context, projectID string) (*models.ContentPack, error) {
	if len(f.packs) == 0 {
		return nil, nil
	}
	return f.packs[len(f.packs)-1], nil
}

type fakeItemRepo struct {
	items         map[string]*models.ContentItem
	due           []*models.ContentItem
	published     []*models.PublishedItem
	publishStatus map[string]string
	publishedIDs  map[string][2]string
	updates       []*models.ItemUpdate
	createErr     error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{
		items:         make(map[string]*models.ContentItem),
		publishStatus: make(map[string]string),
		publishedIDs:  make(map[string][2]string),
	}
}

func (f *fakeItemRepo) Create(ctx context.Context, tx *sql.Tx, item *models.ContentItem) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeItemRepo) GetByID(ctx context.Context, id string) (*models.ContentItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

func (f *fakeItemRepo) ListByPackID(ctx context.Context, packID string) ([]*models.ContentItem, error) {
	var out []*models.ContentItem
	for _, it := range f.items {
		if it.ContentPackID == packID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItemRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.ContentItem, error) {
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakeItemRepo) ListPublished(ctx context.Context, projectID string, limit int) ([]*models.PublishedItem, error) {
	if len(f.published) > limit {
		return f.published[:limit], nil
	}
	return f.published, nil
}

func (f *fakeItemRepo) UpdateReview(ctx context.Context, id string, upd *models.ItemUpdate) error {
	f.updates = append(f.updates, upd)
	item, ok := f.items[id]
	if !ok {
		return nil
	}
	if upd.Status != nil {
		item.Status = *upd.Status
	}
	if upd.CaptionLong != nil {
		item.Caption.Long = *upd.CaptionLong
	}
	if upd.ScheduledAt != nil {
		item.ScheduledAt = upd.ScheduledAt
	}
	if upd.PublishMode != nil {
		item.PublishMode = *upd.PublishMode
	}
	if upd.PublishStatus != nil {
		item.PublishStatus = *upd.PublishStatus
	}
	return nil
}

func (f *fakeItemRepo) SetPublished(ctx context.Context, id, creationID, mediaID string) error {
	f.publishedIDs[id] = [2]string{creationID, mediaID}
	f.publishStatus[id] = models.PublishStatusPublished
	if item, ok := f.items[id]; ok {
		item.PublishStatus = models.PublishStatusPublished
		item.IGCreationID = creationID
		item.IGMediaID = mediaID
	}
	return nil
}

func (f *fakeItemRepo) SetPublishStatus(ctx context.Context, status, id string) error {
	f.publishStatus[id] = status
	if item, ok := f.items[id]; ok {
		item.PublishStatus = status
	}
	return nil
}

type fakeFeaturesRepo struct {
	upserts []*models.ContentFeatures
}

func (f *fakeFeaturesRepo) Upsert(ctx context.Context, features *models.ContentFeatures) error {
	f.upserts = append(f.upserts, features)
	return nil
}

func (f *fakeFeaturesRepo) GetByItemID(ctx context.Context, itemID string) (*models.ContentFeatures, error) {
	for _, cf := range f.upserts {
		if cf.ContentItemID == itemID {
			return cf, nil
		}
	}
	return nil, nil
}

type fakeRenderRepo struct {
	renders   []*models.Render
	finalized map[string]string
	outputs   map[string]models.RenderOutputs
	latest    *models.Render
}

func newFakeRenderRepo() *fakeRenderRepo {
	return &fakeRenderRepo{
		finalized: make(map[string]string),
		outputs:   make(map[string]models.RenderOutputs),
	}
}

func (f *fakeRenderRepo) Create(ctx context.Context, render *models.Render) error {
	f.renders = append(f.renders, render)
	return nil
}

func (f *fakeRenderRepo) GetByID(ctx context.Context, id string) (*models.Render, error) {
	for _, r := range f.renders {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRenderRepo) Finalize(ctx context.Context, id, status string, outputs models.RenderOutputs) error {
	f.finalized[id] = status
	f.outputs[id] = outputs
	return nil
}

func (f *fakeRenderRepo) LatestSucceeded(ctx context.Context, itemID string) (*models.Render, error) {
	return f.latest, nil
}

func (f *fakeRenderRepo) ListByItemID(ctx context.Context, itemID string) ([]*models.Render, error) {
	return f.renders, nil
}

type fakeMetricsRepo struct {
	created   []*models.PostMetrics
	createErr error
}

func (f *fakeMetricsRepo) Create(ctx context.Context, metrics *models.PostMetrics) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, metrics)
	return nil
}

func (f *fakeMetricsRepo) ListByItemID(ctx context.Context, itemID string) ([]*models.PostMetrics, error) {
	return f.created, nil
}

type fakeProjectRepo struct {
	project *models.Project
	err     error
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	return f.project, f.err
}

func (f *fakeProjectRepo) SetPublishEnabled(ctx context.Context, id string, enabled bool) error {
	if f.project != nil {
		f.project.IGPublishEnabled = enabled
	}
	return nil
}

func (f *fakeProjectRepo) SetToken(ctx context.Context, id, encryptedToken string, expiresAt time.Time) error {
	if f.project != nil {
		f.project.MetaAccessToken = encryptedToken
		f.project.TokenExpiresAt = &expiresAt
	}
	return nil
}

func (f *fakeProjectRepo) ListExpiringTokens(ctx context.Context, from, to time.Time) ([]*models.Project, error) {
	if f.project == nil {
		return nil, nil
	}
	return []*models.Project{f.project}, nil
}

type fakeAssetRepo struct {
	refs     []*models.Asset
	created  []*models.Asset
	existing map[string]bool
}

func (f *fakeAssetRepo) Create(ctx context.Context, asset *models.Asset) error {
	f.created = append(f.created, asset)
	return nil
}

func (f *fakeAssetRepo) ListReferences(ctx context.Context, projectID string, limit int) ([]*models.Asset, error) {
	if len(f.refs) > limit {
		return f.refs[:limit], nil
	}
	return f.refs, nil
}

func (f *fakeAssetRepo) ExistsByURL(ctx context.Context, projectID, url string) (bool, error) {
	return f.existing[url], nil
}

type fakeActionRepo struct {
	actions []*models.UserAction
}

func (f *fakeActionRepo) Create(ctx context.Context, action *models.UserAction) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeActionRepo) ListByItemID(ctx context.Context, itemID string) ([]*models.UserAction, error) {
	return f.actions, nil
}

type fakePolicy struct {
	arm       *policy.Arm
	chooseErr error
	updates   []policyUpdate
	updateErr error
	chooseCnt int
}

type policyUpdate struct {
	ArmID  string
	Reward float64
	Window string
}

func (f *fakePolicy) Choose(ctx context.Context, projectID, period string, pc policy.Context) (*policy.Arm, error) {
	f.chooseCnt++
	if f.chooseErr != nil {
		return nil, f.chooseErr
	}
	return f.arm, nil
}

func (f *fakePolicy) Update(ctx context.Context, projectID, period, armID string, reward float64, meta policy.UpdateMeta) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, policyUpdate{ArmID: armID, Reward: reward, Window: meta.Window})
	return nil
}

type fakeDrafter struct {
	draft *PostDraft
	err   error
}

func (f *fakeDrafter) DraftPost(ctx context.Context, req DraftRequest) (*PostDraft, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.draft != nil {
		return f.draft, nil
	}
	return &PostDraft{
		Topic:   "topic",
		Caption: models.Caption{Short: "short", Long: "long", CTA: "cta"},
		Visual: models.VisualBrief{
			SceneDescription: "a clean studio scene",
			OnScreenText:     "hello",
			NegativePrompt:   []string{"watermark"},
		},
	}, nil
}

type fakeRenderEnqueuer struct {
	itemIDs []string
	prompts []string
	err     error
}

func (f *fakeRenderEnqueuer) EnqueueRender(ctx context.Context, itemID, prompt, negativePrompt string, imageURLs []string) error {
	if f.err != nil {
		return f.err
	}
	f.itemIDs = append(f.itemIDs, itemID)
	f.prompts = append(f.prompts, prompt)
	return nil
}

type fakePublishEnqueuer struct {
	itemIDs []string
	failFor map[string]bool
}

func (f *fakePublishEnqueuer) EnqueuePublish(ctx context.Context, itemID string) error {
	if f.failFor[itemID] {
		return errUnavailable
	}
	f.itemIDs = append(f.itemIDs, itemID)
	return nil
}

type fakeMetricsEnqueuer struct {
	windows []string
	delays  []time.Duration
	err     error
}

func (f *fakeMetricsEnqueuer) EnqueueMetrics(ctx context.Context, projectID, window string, delay time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.windows = append(f.windows, window)
	f.delays = append(f.delays, delay)
	return nil
}

type fakePublisher struct {
	creationID string
	mediaID    string
	createErr  error
	publishErr error
	captions   []string
	imageURLs  []string
}

func (f *fakePublisher) CreateMediaContainer(ctx context.Context, igUserID, accessToken string, container transfer.MediaContainer) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.captions = append(f.captions, container.Caption)
	f.imageURLs = append(f.imageURLs, container.ImageURL)
	return f.creationID, nil
}

func (f *fakePublisher) PublishMedia(ctx context.Context, igUserID, accessToken, creationID string) (string, error) {
	if f.publishErr != nil {
		return "", f.publishErr
	}
	return f.mediaID, nil
}

type fakeInsights struct {
	values  map[string]map[string]int64
	failFor map[string]bool
}

func (f *fakeInsights) GetMediaInsights(ctx context.Context, igMediaID, accessToken string, metrics []string) (map[string]int64, error) {
	if f.failFor[igMediaID] {
		return nil, errUnavailable
	}
	return f.values[igMediaID], nil
}

type fakeGenerator struct {
	result   *GenerateResult
	err      error
	requests []GenerateRequest
}

func (f *fakeGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStore struct {
	url string
	err error
}

func (f *fakeStore) MirrorImage(ctx context.Context, srcURL, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeDebounce struct {
	allow  bool
	marked int
}

func (f *fakeDebounce) ShouldRun(ctx context.Context) bool { return f.allow }
func (f *fakeDebounce) MarkRun(ctx context.Context)        { f.marked++ }
