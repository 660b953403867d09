package mssql

import (
	"fmt"

	"github.com/google/uuid"
)

// formatUniqueIdentifier decodes SQL Server's wire layout: the first three
// groups are little endian, the last two big endian.
func formatUniqueIdentifier(b []byte) (string, error) {
	if len(b) != 16 {
		return "", fmt.Errorf("uniqueidentifier: want 16 bytes, got %d", len(b))
	}

	var swapped [16]byte
	copy(swapped[:], b)
	swapped[0], swapped[1], swapped[2], swapped[3] = b[3], b[2], b[1], b[0]
	swapped[4], swapped[5] = b[5], b[4]
	swapped[6], swapped[7] = b[7], b[6]

	id, err := uuid.FromBytes(swapped[:])
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
