package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPagerReadPageReturnsCorrectSlice(t *testing.T) {
	buf := make([]byte, 1024)
	buf[0] = 0xaa  // page 1, offset 0
	buf[512] = 0xbb // page 2, offset 512

	pager := NewPager(newMemFile(buf), 512, 0, 10)

	p1, err := pager.ReadPage(1)
	require.NoError(t, err)
	assert.Equal(t, byte(0xaa), p1[0])

	p2, err := pager.ReadPage(2)
	require.NoError(t, err)
	assert.Equal(t, byte(0xbb), p2[0])
}

func TestPagerReadPageZeroIsInvalid(t *testing.T) {
	pager := NewPager(newMemFile(make([]byte, 512)), 512, 0, 10)
	_, err := pager.ReadPage(0)
	require.Error(t, err)
}

func TestPagerReadPagePastEndOfFile(t *testing.T) {
	pager := NewPager(newMemFile(make([]byte, 512)), 512, 0, 10)
	_, err := pager.ReadPage(5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPageOutOfRange))
}

func TestPagerReadPageShortFile(t *testing.T) {
	// File holds page 1 in full but page 2 only partially: a short read,
	// not a page number beyond the end of the file.
	pager := NewPager(newMemFile(make([]byte, 512+100)), 512, 0, 10)
	_, err := pager.ReadPage(2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestPagerCacheEviction(t *testing.T) {
	buf := make([]byte, 512*3)
	pager := NewPager(newMemFile(buf), 512, 0, 2)

	_, err := pager.ReadPage(1)
	require.NoError(t, err)
	_, err = pager.ReadPage(2)
	require.NoError(t, err)
	_, err = pager.ReadPage(3)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(pager.cache), 2)
}
