package ptyproc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartWriteReadKill(t *testing.T) {
	p, err := Start([]string{"/bin/cat"}, 24, 80)
	require.NoError(t, err)
	require.True(t, p.Running())

	n, err := p.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	buf := make([]byte, 64)
	readN, err := p.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:readN]), "hello")

	err = p.Resize(30, 100)
	require.NoError(t, err)

	p.Kill()
	assert.False(t, p.Running())

	_, err = p.Write([]byte("x"))
	assert.Error(t, err)
}

func TestKillEscalatesOnUnresponsiveProcess(t *testing.T) {
	p, err := Start([]string{"/bin/sh", "-c", "trap '' TERM; sleep 5"}, 24, 80)
	require.NoError(t, err)

	start := time.Now()
	p.Kill()
	elapsed := time.Since(start)

	assert.False(t, p.Running())
	assert.Less(t, elapsed, 2*time.Second)
}
