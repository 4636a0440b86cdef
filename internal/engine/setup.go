package engine

import (
	"sort"

	"github.com/mark3labs/hexthrone/internal/domain"
	"github.com/mark3labs/hexthrone/internal/hexgrid"
)

// SetupResult is the generated initial board for a game.
type SetupResult struct {
	Pieces []domain.Piece
	Holes  map[hexgrid.Hex]struct{}
}

// GenerateSetup deterministically builds the initial board: warriors
// and a jarl near each player's home corner, shields in a symmetric
// inner ring, the throne at center (never occupied), and holes from
// the terrain table (spec §4.B "setup" sub-state).
func GenerateSetup(config domain.GameConfig, players []domain.Player, pieceIDFor func(kind string, playerIdx, n int) string) SetupResult {
	holes := terrainHoles(config.Terrain, config.BoardRadius)
	used := map[hexgrid.Hex]struct{}{throneHex: {}}

	var pieces []domain.Piece
	for i, pl := range players {
		homeDir := (i * 6) / max(config.PlayerCount, 1)
		corner := hexgrid.Directions[homeDir%6].Scale(config.BoardRadius)

		cells := nearestFreeCells(config.BoardRadius, corner, 1+config.WarriorCount, used, holes)
		if len(cells) == 0 {
			continue
		}
		pieces = append(pieces, domain.Piece{
			ID:       pieceIDFor("jarl", i, 0),
			Type:     domain.PieceJarl,
			PlayerID: pl.ID,
			Position: cells[0],
		})
		for w, h := range cells[1:] {
			pieces = append(pieces, domain.Piece{
				ID:       pieceIDFor("warrior", i, w),
				Type:     domain.PieceWarrior,
				PlayerID: pl.ID,
				Position: h,
			})
		}
	}

	innerRadius := config.BoardRadius / 2
	if innerRadius < 1 {
		innerRadius = 1
	}
	for i := 0; i < 6; i++ {
		anchor := hexgrid.Directions[i].Scale(innerRadius)
		cells := nearestFreeCells(config.BoardRadius, anchor, 1, used, holes)
		if len(cells) == 0 {
			continue
		}
		pieces = append(pieces, domain.Piece{
			ID:       pieceIDFor("shield", i, 0),
			Type:     domain.PieceShield,
			PlayerID: "",
			Position: cells[0],
		})
	}

	return SetupResult{Pieces: pieces, Holes: holes}
}

// terrainHoles returns the fixed hole pattern for a terrain tag. Holes
// never occupy the throne; GenerateSetup's used-set also keeps them
// clear of the throne defensively.
func terrainHoles(tag domain.TerrainTag, radius int) map[hexgrid.Hex]struct{} {
	holes := map[hexgrid.Hex]struct{}{}
	if tag != domain.TerrainCragged {
		return holes
	}
	if radius < 3 {
		return holes
	}
	midRadius := radius - 1
	for i := 0; i < 6; i++ {
		h := hexgrid.Directions[i].Scale(midRadius)
		if h != throneHex {
			holes[h] = struct{}{}
		}
	}
	return holes
}

// nearestFreeCells returns up to n board cells nearest to anchor (by
// distance, then a stable tiebreak), skipping the throne, holes, and
// any cell already in used; it marks every returned cell as used.
func nearestFreeCells(boardRadius int, anchor hexgrid.Hex, n int, used map[hexgrid.Hex]struct{}, holes map[hexgrid.Hex]struct{}) []hexgrid.Hex {
	all := hexgrid.Ring(boardRadius)
	sort.Slice(all, func(i, j int) bool {
		di, dj := hexgrid.Distance(anchor, all[i]), hexgrid.Distance(anchor, all[j])
		if di != dj {
			return di < dj
		}
		if all[i].Q != all[j].Q {
			return all[i].Q < all[j].Q
		}
		return all[i].R < all[j].R
	})

	var out []hexgrid.Hex
	for _, h := range all {
		if h == throneHex {
			continue
		}
		if _, isHole := holes[h]; isHole {
			continue
		}
		if _, taken := used[h]; taken {
			continue
		}
		out = append(out, h)
		used[h] = struct{}{}
		if len(out) == n {
			break
		}
	}
	return out
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
