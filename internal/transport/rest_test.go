package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
)

func TestMoveCommandDTO_ToDomain(t *testing.T) {
	raw := `{"pieceId":"jarl-0-0","destination":{"q":3,"r":-2}}`
	var dto moveCommandDTO
	require.NoError(t, json.Unmarshal([]byte(raw), &dto))

	got := dto.toDomain()
	want := domain.MoveCommand{PieceID: "jarl-0-0", Destination: hexgrid.Hex{Q: 3, R: -2}}
	assert.Equal(t, want, got)
}
