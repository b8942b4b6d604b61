package notify_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/bacalhau-project/bacboot/pkg/utils/notify"
	"github.com/stretchr/testify/assert"
)

type fixedTimer struct{}

func (fixedTimer) Start()    {}
func (fixedTimer) NewStage() {}
func (fixedTimer) Stop()     {}

func (fixedTimer) GetTiming() (time.Duration, time.Duration) {
	return 3 * time.Second, time.Second
}

func TestWriteMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  notify.Message
		want string
	}{
		{"error", notify.Message{Type: notify.ErrorType, Content: "boom"}, "✗ boom\n"},
		{"warning", notify.Message{Type: notify.WarningType, Content: "careful"}, "⚠ careful\n"},
		{"activity", notify.Message{Type: notify.ActivityType, Content: "cloning"}, "► cloning\n"},
		{"success", notify.Message{Type: notify.SuccessType, Content: "done"}, "✔ done\n"},
		{"info", notify.Message{Type: notify.InfoType, Content: "fyi"}, "ℹ fyi\n"},
		{"prompt", notify.Message{Type: notify.PromptType, Content: "continue?"}, "? continue? "},
		{"title default emoji", notify.Message{Type: notify.TitleType, Content: "Install"}, "🐟 Install\n"},
		{
			"title custom emoji",
			notify.Message{Type: notify.TitleType, Content: "Verify", Emoji: "🔎"},
			"🔎 Verify\n",
		},
		{
			"formatted",
			notify.Message{Type: notify.ErrorType, Content: "exit %d: %s", Args: []any{2, "bad"}},
			"✗ exit 2: bad\n",
		},
		{
			"multiline aligned",
			notify.Message{Type: notify.InfoType, Content: "first\nsecond\n\nthird"},
			"ℹ first\n  second\n\n  third\n",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			msg := testCase.msg
			msg.Writer = &out
			notify.WriteMessage(msg)

			assert.Equal(t, testCase.want, out.String())
		})
	}
}

func TestSuccessWithTimerf(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	notify.SuccessWithTimerf(&out, fixedTimer{}, "bundle ready")

	assert.Equal(t, "✔ bundle ready\n⏲ current: 1s\n  total:  3s\n", out.String())
}

func TestStageSeparatingWriter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	writer := notify.NewStageSeparatingWriter(&out)

	notify.Titlef(writer, "📦", "Fetch bundle")
	notify.Activityf(writer, "cloning")
	notify.Titlef(writer, "🚀", "Run playbook")
	notify.Successf(writer, "done")

	assert.Equal(t, "📦 Fetch bundle\n► cloning\n\n🚀 Run playbook\n✔ done\n", out.String())

	writer.Reset()
	out.Reset()
	notify.Titlef(writer, "🚀", "Again")

	assert.Equal(t, "🚀 Again\n", out.String())
}
