package gitdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeModifiedAndAdded(t *testing.T) {
	head := "a\nb\nc\n"
	current := "a\nB\nc\nd\n"

	res := Compute(head, current)

	assert.Equal(t, Unchanged, res.LineStatus[0])
	assert.Equal(t, Modified, res.LineStatus[1])
	assert.Equal(t, Unchanged, res.LineStatus[2])
	assert.Equal(t, Added, res.LineStatus[3])
	assert.Empty(t, res.DeletedAfter)
}

func TestComputeDeletedAfterPureDelete(t *testing.T) {
	head := "a\nb\nc\n"
	current := "a\nB\nd\n"

	res := Compute(head, current)

	assert.Equal(t, Unchanged, res.LineStatus[0])
	assert.Equal(t, Modified, res.LineStatus[1])
	assert.Equal(t, Added, res.LineStatus[2])
	assert.Equal(t, 1, res.DeletedAfter[1])
}

func TestComputeIdenticalDocuments(t *testing.T) {
	head := "a\nb\nc"
	res := Compute(head, head)
	for i := 0; i < 3; i++ {
		assert.Equal(t, Unchanged, res.LineStatus[i])
	}
	assert.Empty(t, res.DeletedAfter)
}
