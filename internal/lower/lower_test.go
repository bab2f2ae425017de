package lower

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ashc/internal/frontend"
	"ashc/internal/intern"
	"ashc/internal/module"
	"ashc/internal/typecheck"
)

func lowerSource(t *testing.T, src string) string {
	t.Helper()
	reg := intern.New()
	mm := module.NewManager(reg)

	res, err := frontend.Parse(reg, "t.ash", src)
	require.NoError(t, err)
	require.NoError(t, mm.AddFile("t.ash", res.Module, res.Imports, res.Body))

	files, cycles := mm.GetBuildFilesOrder()
	require.Nil(t, cycles)

	tc := typecheck.New(mm, reg)
	require.NoError(t, tc.CheckBuild(files))

	l := New(reg, "t")
	defer l.Dispose()
	require.NoError(t, l.LowerBuild(mm, files))
	return l.Module().String()
}

func TestLowerSimpleFunctionEmitsEntryAndRet(t *testing.T) {
	ir := lowerSource(t, `function int f() { return 1 + 2; }`)
	assert.Contains(t, ir, "define")
	assert.Contains(t, ir, "entry")
	assert.Contains(t, ir, "ret i32")
}

func TestLowerIfAsStatementEmitsConditionalBranch(t *testing.T) {
	ir := lowerSource(t, `function void f() { if true { } }`)
	assert.True(t, strings.Contains(ir, "br i1") || strings.Contains(ir, "br label"))
}

func TestLowerForLoopEmitsBlocks(t *testing.T) {
	ir := lowerSource(t, `function void f() { for int i = 0; i < 10; i += 1 { } }`)
	assert.Contains(t, ir, "for.body")
	assert.Contains(t, ir, "for.cond")
}

func TestLowerCallSite(t *testing.T) {
	ir := lowerSource(t, `
		function int helper(int x) { return x; }
		function int f() { return helper(41); }
	`)
	assert.Contains(t, ir, "call i32")
}

func TestLowerSignedDivisionEmitsSDiv(t *testing.T) {
	ir := lowerSource(t, `function int f(int a, int b) { return a / b; }`)
	assert.Contains(t, ir, "sdiv")
	assert.NotContains(t, ir, "udiv")
}

func TestLowerUnsignedDivisionEmitsUDiv(t *testing.T) {
	ir := lowerSource(t, `function u32 f(u32 a, u32 b) { return a / b; }`)
	assert.Contains(t, ir, "udiv")
	assert.NotContains(t, ir, "sdiv")
}

func TestLowerShortCircuitAndEmitsPhi(t *testing.T) {
	ir := lowerSource(t, `function bool f(bool a, bool b) { return a && b; }`)
	assert.Contains(t, ir, "phi i1")
	assert.True(t, strings.Contains(ir, "br i1"))
}
