package intent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Kind
	}{
		{"open notepad", PCControl},
		{"  Close Chrome", PCControl},
		{"search golang generics", WebSearch},
		{"find me a recipe", WebSearch},
		{"set volume to 30", PCControl},
		{"brightness 80", PCControl},
		{"take a screenshot", PCControl},
		{"type hello world", PCControl},
		{"press enter", PCControl},
		{"click 120 300", PCControl},
		{"write a poem about rain", Writing},
		{"ek shayari sunao", Writing},
		{"weather 28.6 77.2", Realtime},
		{"latest news", Realtime},
		{"bitcoin price", Realtime},
		{"how is the stock market", Realtime},
		{"tell me about black holes", General},
		{"", General},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			got := Classify(tc.text)
			require.Equal(t, tc.want, got.Kind, "kind %s", got.Kind)
			require.Equal(t, tc.text, got.Payload)
		})
	}
}

func TestClassify_OrderDecidesOverlaps(t *testing.T) {
	// open/close prefix beats search
	require.Equal(t, PCControl, Classify("open search console").Kind)
	// search beats the control keywords
	require.Equal(t, WebSearch, Classify("search volume knobs").Kind)
	// control keywords beat writing
	require.Equal(t, PCControl, Classify("type a poem").Kind)
	// writing beats realtime
	require.Equal(t, Writing, Classify("poem about the weather").Kind)
}

func TestKindString(t *testing.T) {
	require.Equal(t, "pc_control", PCControl.String())
	require.Equal(t, "general", Kind(42).String())
}
