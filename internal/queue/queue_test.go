package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Payload field names are a wire contract with any producer that writes into
// the queues directly, so they are pinned here.
func TestPayloadFieldNames(t *testing.T) {
	cases := []struct {
		name    string
		payload any
		want    string
	}{
		{
			TaskPlanGenerate,
			PlanGeneratePayload{ProjectID: "p", Month: "2026-09", Limit: 5},
			`{"project_id":"p","month":"2026-09","limit":5}`,
		},
		{
			TaskRenderFlux,
			RenderFluxPayload{ContentItemID: "i", Prompt: "scene", NegativePrompt: "blur", ImageURLs: []string{"u"}},
			`{"content_item_id":"i","prompt":"scene","negative_prompt":"blur","image_urls":["u"]}`,
		},
		{
			TaskPublishInstagram,
			PublishInstagramPayload{ContentItemID: "i"},
			`{"content_item_id":"i"}`,
		},
		{
			TaskMetricsIngest,
			MetricsIngestPayload{ProjectID: "p", Window: "24h"},
			`{"project_id":"p","window":"24h"}`,
		},
		{
			TaskInstagramIngest,
			InstagramIngestPayload{ProjectID: "p"},
			`{"project_id":"p"}`,
		},
	}

	for _, tc := range cases {
		data, err := json.Marshal(tc.payload)
		require.NoError(t, err, tc.name)
		assert.JSONEq(t, tc.want, string(data), tc.name)
	}
}

func TestOptionalPayloadFieldsAreOmitted(t *testing.T) {
	data, err := json.Marshal(RenderFluxPayload{ContentItemID: "i", Prompt: "scene"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content_item_id":"i","prompt":"scene"}`, string(data))

	data, err = json.Marshal(ScheduleTickPayload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
