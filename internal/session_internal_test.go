package internal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReturnIDExhaustion(t *testing.T) {
	s := NewSession(nil)
	s.lastID = math.MaxInt64 - 1
	require.Equal(t, ReturnID(math.MaxInt64), s.AllocateReturnID())
	require.PanicsWithValue(t, "rubble: Return IDs exhausted", func() { s.AllocateReturnID() })
}

func TestFrameLocals(t *testing.T) {
	method := &RootUnit{Kind: MethodUnit, Layout: &FrameLayout{Names: []string{visibilitySlot, "a"}}}
	block := &RootUnit{Kind: BlockUnit, Layout: &FrameLayout{Names: []string{"b"}}}
	top := &RootUnit{Kind: TopLevelUnit, Layout: &FrameLayout{Names: []string{"hidden"}}}
	mf := &Frame{Unit: method, Slots: make([]Value, 2), Declaration: &Frame{Unit: top, Slots: make([]Value, 1)}}
	bf := &Frame{Unit: block, Slots: make([]Value, 1), Declaration: mf}
	require.Equal(t, []string{"b", "a"}, frameLocals(bf))
	require.Nil(t, frameLocals(nil))
}

func TestEnvironmentForFrame(t *testing.T) {
	s := NewSession(nil)
	outer := &RootUnit{Kind: TopLevelUnit, Layout: &FrameLayout{Names: []string{visibilitySlot, "x"}}}
	inner := &RootUnit{Kind: BlockUnit, Layout: &FrameLayout{Names: []string{"y"}}}
	of := &Frame{Unit: outer, Slots: make([]Value, 2)}
	inf := &Frame{Unit: inner, Slots: make([]Value, 1), Declaration: of}
	env := s.environmentForFrame(inf)
	require.Equal(t, EvalEnv, env.Kind())
	depth, slot, ok := env.Resolve("x")
	require.True(t, ok)
	require.Equal(t, 1, depth)
	require.Equal(t, 1, slot)
	depth, slot, ok = env.Resolve("y")
	require.True(t, ok)
	require.Equal(t, 0, depth)
	require.Equal(t, 0, slot)
}
