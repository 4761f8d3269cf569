package notify

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
)

// Settings merges system_settings/line_integration and
// system_settings/global_config.
type Settings struct {
	Enabled            bool
	ChannelAccessToken string
	TargetID           string
	CompanyName        string
	LiffID             string
}

// Ready reports whether a push can be attempted.
func (s *Settings) Ready() bool {
	return s != nil && s.Enabled && s.ChannelAccessToken != "" && s.TargetID != ""
}

type SettingsRepository struct {
	client *firestore.Client
}

func NewSettingsRepository(client *firestore.Client) *SettingsRepository {
	return &SettingsRepository{client: client}
}

// Load reads both settings documents. A missing document leaves its fields
// zero, which disables the integration.
func (r *SettingsRepository) Load(ctx context.Context) (*Settings, error) {
	line, err := r.read(ctx, fs.DocLineIntegration)
	if err != nil {
		return nil, err
	}
	global, err := r.read(ctx, fs.DocGlobalConfig)
	if err != nil {
		return nil, err
	}
	return &Settings{
		Enabled:            fs.Bool(line, "isEnabled"),
		ChannelAccessToken: fs.String(line, "channelAccessToken"),
		TargetID:           fs.String(line, "targetId"),
		CompanyName:        fs.String(global, "companyName"),
		LiffID:             fs.String(global, "liffId"),
	}, nil
}

func (r *SettingsRepository) read(ctx context.Context, doc string) (map[string]any, error) {
	snap, err := r.client.Collection(fs.CollectionSystemSettings).Doc(doc).Get(ctx)
	if err != nil {
		if fs.IsNotFound(err) {
			return map[string]any{}, nil
		}
		return nil, apperrors.Service("failed to load "+doc+" settings", err)
	}
	return snap.Data(), nil
}
