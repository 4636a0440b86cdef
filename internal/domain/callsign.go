package domain

import (
	"fmt"
	"math/rand"
	"time"
)

var (
	aiEpithets = []string{
		"Swift", "Grim", "Mighty", "Fierce", "Sharp", "Noble", "Silent", "Valiant",
		"Savage", "Iron", "Shadow", "Thunder", "Crimson", "Golden", "Frost", "Bone",
	}

	aiNames = []string{
		"Ragnar", "Bjorn", "Leif", "Ulf", "Sigurd", "Harald", "Ivar", "Gunnar",
		"Hakon", "Erik", "Olaf", "Knut", "Thorvald", "Sten", "Halvar", "Magni",
	}
)

// GenerateAICallsign mints a random "<Epithet> <Name>" seat name for an
// AI-controlled player, in the format "<Epithet> <Name>", adapted from
// the teacher's adjective+noun callsign generator into a Norse register
// fitting a jarl's warband.
func GenerateAICallsign() string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	epithet := aiEpithets[r.Intn(len(aiEpithets))]
	name := aiNames[r.Intn(len(aiNames))]
	return fmt.Sprintf("%s %s", epithet, name)
}
