package processor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkal/tourbot/pkg/processor"
)

func TestChunkShortText(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 100, ChunkOverlap: 20})

	chunks, err := p.Chunk("Concert: Coldboy Tour, date: 2024-05-01, venue: City Arena")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "Coldboy")
}

func TestChunkLongText(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{ChunkSize: 120, ChunkOverlap: 30})

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString("The world tour stops at another stadium with a new setlist every night. ")
	}

	chunks, err := p.Chunk(sb.String())
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(chunk))
		assert.LessOrEqual(t, len(chunk), 120)
	}
}

func TestIsRelevant(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "tour document",
			text: "Concert: Coldboy Tour, date: 2024-05-01, venue: City Arena",
			want: true,
		},
		{
			name: "uppercase keywords",
			text: "TICKETS ON SALE FOR THE FESTIVAL",
			want: true,
		},
		{
			name: "cooking recipe",
			text: "Slice the onions, brown the butter and simmer for twenty minutes.",
			want: false,
		},
		{
			name: "empty",
			text: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.IsRelevant(tt.text))
		})
	}
}

func TestExtractMetadata(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	text := "Artist: Coldboy\ndate: 2024-05-01\nVenue: City Arena\nTickets on sale now."
	metadata := p.ExtractMetadata(text)

	assert.Equal(t, "Coldboy", metadata["artist"])
	assert.Equal(t, "2024-05-01", metadata["date"])
	assert.Equal(t, "City Arena", metadata["venue"])
}

func TestExtractMetadataPartial(t *testing.T) {
	p := processor.NewWithConfig(processor.ProcessorConfig{})

	metadata := p.ExtractMetadata("The gig was loud and sold out.")
	assert.Empty(t, metadata)

	metadata = p.ExtractMetadata("venue: Royal Hall")
	assert.Equal(t, "Royal Hall", metadata["venue"])
	assert.NotContains(t, metadata, "artist")
	assert.NotContains(t, metadata, "date")
}
