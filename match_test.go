package fpmatch_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npillmayer/fpmatch"
	"github.com/npillmayer/fpmatch/access"
	"github.com/npillmayer/fpmatch/bind"
	"github.com/npillmayer/fpmatch/capture"
	"github.com/npillmayer/fpmatch/compile"
	"github.com/npillmayer/fpmatch/pattern"
	"github.com/npillmayer/fpmatch/typecheck"
	"github.com/npillmayer/fpmatch/value"
)

func TestLiteralsAndWildcard(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	m, err := fpmatch.Compile(
		fpmatch.When(0).Then("zero"),
		fpmatch.When(1).Then("one"),
		fpmatch.When("_").Then("other"),
	)
	require.NoError(t, err)
	for v, expected := range map[int]string{0: "zero", 1: "one", 5: "other"} {
		res, err := m.Match(v)
		require.NoError(t, err)
		assert.Equal(t, expected, res, "value %d", v)
	}
}

func TestEmptyCaseList(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	_, err := fpmatch.Compile()
	require.Error(t, err)
	assert.True(t, fpmatch.IsBuildError(err))
	_, err = fpmatch.Match(1)
	assert.True(t, fpmatch.IsBuildError(err))
}

func TestMalformedCases(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	twoRests := fpmatch.When([]any{"*a", "*b"}).Then(1)
	_, err := fpmatch.Compile(fpmatch.When(1).Then(1), twoRests)
	require.Error(t, err)
	assert.True(t, fpmatch.IsBuildError(err))
	assert.Contains(t, err.Error(), "case 2")
	//
	m, err := fpmatch.New([]fpmatch.Case{fpmatch.When(1).Then(1), twoRests}, fpmatch.Lazy())
	require.NoError(t, err, "lazy matcher should defer compiling")
	res, err := m.Match(1)
	require.NoError(t, err)
	assert.Equal(t, 1, res)
	_, err = m.Match(2)
	assert.True(t, fpmatch.IsBuildError(err), "expected build error, is %v", err)
	//
	_, err = fpmatch.Compile(fpmatch.Default().If(42))
	assert.True(t, fpmatch.IsBuildError(err), "expected guard 42 to be rejected")
	_, err = fpmatch.Compile(fpmatch.Default().Then(fpmatch.Ret("a[")))
	assert.True(t, fpmatch.IsBuildError(err), "expected malformed bindings to be rejected")
}

func TestShortCircuit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	calls := 0
	count := func() bool { calls++; return true }
	m, err := fpmatch.Compile(
		fpmatch.When("a").If(count).Then("first"),
		fpmatch.Is("a").If(count).Then("second"),
		fpmatch.Default().If(count).Then(func() string { calls++; return "third" }),
	)
	require.NoError(t, err)
	res, err := m.Match("a")
	require.NoError(t, err)
	assert.Equal(t, "first", res)
	assert.Equal(t, 1, calls, "later guards and results must not be evaluated")
}

func TestIdempotentMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	m, err := fpmatch.Compile(
		fpmatch.When([]any{"h", "*t"}).Then(fpmatch.Ret("t")).Bind("h"),
	)
	require.NoError(t, err)
	v := []int{1, 2, 3}
	r1, err1 := m.Match(v)
	r2, err2 := m.Match(v)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, r1, r2)
	assert.Equal(t, []any{2, 3}, r1)
	assert.Equal(t, []int{1, 2, 3}, v)
}

func TestPalindromeRest(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	same := bind.Func(func(h, t any) bool { return value.Equal(h, t) }, "h", "t")
	m, err := fpmatch.Compile(
		fpmatch.When([]any{"h", "*m", "t"}).If(same).Then(fpmatch.Ret("m")),
	)
	require.NoError(t, err)
	res, err := m.Match([]any{"a", "a", "b", "a", "a"})
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b", "a"}, res)
	_, err = m.Match([]any{"a", "b"})
	assert.True(t, fpmatch.IsNoMatch(err))
}

func TestPalindromeContinue(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	same := bind.Func(func(h, t any) bool { return value.Equal(h, t) }, "h", "t")
	isPalindrome, err := fpmatch.Compile(
		fpmatch.When([]any{"h", "*m", "t"}).If(same).Then(fpmatch.Continue("m")).Otherwise(false),
		fpmatch.When([]any{"_"}).Then("odd"),
		fpmatch.Default().Then("even"),
	)
	require.NoError(t, err)
	for _, c := range []struct {
		v        any
		expected any
	}{
		{[]string{"a", "a", "b", "b", "a", "a"}, "even"},
		{[]string{"a", "a", "b", "a", "a"}, "odd"},
		{[]string{"a", "a", "b", "c", "a", "a"}, false},
		{[]int{1, 2, 2, 1}, "even"},
		{[]int{1, 2, 3, 2, 1}, "odd"},
		{[]int{1, 2, 3, 4, 2, 1}, false},
	} {
		res, err := isPalindrome.Match(c.v)
		require.NoError(t, err)
		assert.Equal(t, c.expected, res, "palindrome %v", c.v)
	}
}

func TestContinueWithSplicedBindings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	// find the first number which is not the sum of its two predecessors
	unfit, err := fpmatch.Compile(
		fpmatch.When([]any{"a", "b", "c", "*t"}).
			If(bind.Func(func(a, b, c int) bool { return c != a+b }, "a", "b", "c")).
			Then(fpmatch.Ret("c")).
			Otherwise(fpmatch.Continue("b, c, t")),
		fpmatch.Default().Then(nil),
	)
	require.NoError(t, err)
	res, err := unfit.Match([]int{1, 2, 3, 5, 8, 13, 21, 34, 55, 89})
	require.NoError(t, err)
	assert.Nil(t, res)
	res, err = unfit.Match([]int{1, 2, 3, 5, 8, 13, 22, 34, 55, 89})
	require.NoError(t, err)
	assert.Equal(t, 22, res)
}

func TestNestedParity(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	even := bind.Func(func(n int) bool { return n%2 == 0 })
	m, err := fpmatch.Compile(
		fpmatch.When(typecheck.Int).Then(fpmatch.Nested(
			fpmatch.When(even).Then("even"),
			fpmatch.When("_").Then("odd"),
		)),
	)
	require.NoError(t, err)
	res, err := m.Match(8)
	require.NoError(t, err)
	assert.Equal(t, "even", res)
	res, err = m.Match(7)
	require.NoError(t, err)
	assert.Equal(t, "odd", res)
	_, err = m.Match("x")
	require.Error(t, err)
	var nm *fpmatch.NoMatchError
	require.True(t, errors.As(err, &nm))
	assert.Equal(t, "No case matched string('x'):\n  did not match type: int", nm.Error())
	assert.True(t, errors.Is(err, pattern.ErrNoMatch))
}

func TestNestedMatcherSeesCaptures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	inner, err := fpmatch.Compile(
		fpmatch.When(0).Then("zero"),
		fpmatch.Default().Then(bind.Func(func(n int) int { return 2 * n }, "n")),
	)
	require.NoError(t, err)
	outer, err := fpmatch.Compile(
		fpmatch.When("n@_").Then(inner),
	)
	require.NoError(t, err)
	res, err := outer.Match(21)
	require.NoError(t, err)
	assert.Equal(t, 42, res)
	res, err = inner.Match(5, capture.Of("n", 4))
	require.NoError(t, err)
	assert.Equal(t, 8, res, "initial captures should be visible")
}

func TestNestedFailureFallsThrough(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	m, err := fpmatch.Compile(
		fpmatch.When(typecheck.Int).Then([]fpmatch.Case{
			fpmatch.When(1).Then("one"),
			fpmatch.When(2).Then("two"),
		}),
		fpmatch.Default().Then("many"),
	)
	require.NoError(t, err)
	res, err := m.Match(2)
	require.NoError(t, err)
	assert.Equal(t, "two", res)
	res, err = m.Match(3)
	require.NoError(t, err)
	assert.Equal(t, "many", res)
}

func TestRegexWithGuard(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	octets := bind.Func(func(groups []string) bool {
		for _, g := range groups {
			if n, err := strconv.Atoi(g); err != nil || n > 255 {
				return false
			}
		}
		return true
	})
	m, err := fpmatch.Compile(
		fpmatch.When(`/\A(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})\z/`).If(octets).Then(fpmatch.Ret("0")),
		fpmatch.Default().Then("invalid"),
	)
	require.NoError(t, err)
	res, err := m.Match("1.22.255.123")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "22", "255", "123"}, res)
	res, err = m.Match("1.22.256.123")
	require.NoError(t, err)
	assert.Equal(t, "invalid", res)
}

func TestRegexNamedGroups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	res, err := fpmatch.Match("2022-06",
		fpmatch.When(`/^(?P<year>\d{4})-(?P<month>\d\d)$/`).Then(bind.Func(func(year, month string) string {
			return month + "/" + year
		}, "year", "month")),
	)
	require.NoError(t, err)
	assert.Equal(t, "06/2022", res)
}

type Point struct {
	X, Y int
}

func TestPointObject(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	m, err := fpmatch.Compile(
		fpmatch.When("Point", []any{"x", compile.Prop("y", 0)}).
			Then(bind.Func(func(x int) string { return "on x-axis at " + strconv.Itoa(x) }, "x")),
		fpmatch.Default().Then("elsewhere"),
	)
	require.NoError(t, err)
	res, err := m.Match(Point{X: 3, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, "on x-axis at 3", res)
	res, err = m.Match(Point{X: 3, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", res)
	res, err = m.Match(map[string]any{"x": 3, "y": 0})
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", res, "maps are not points")
}

func TestExhaustionDiagnostic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	_, err := fpmatch.Match(3,
		fpmatch.When(1).Then("_"),
		fpmatch.When(2).Then("_"),
	)
	require.Error(t, err)
	assert.True(t, fpmatch.IsNoMatch(err))
	assert.Equal(t, "No case matched int(3):\n  did not match exact values: 1, 2", err.Error())
	assert.Nil(t, errors.Unwrap(err), "no case raised an error")
}

func TestGuardFallThroughAndElse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	positive := bind.Func(func(n int) bool { return n > 0 }, "n")
	m, err := fpmatch.Compile(
		fpmatch.When("n@_", typecheck.Int).If(positive).Then("positive"),
		fpmatch.When(typecheck.Int).Then("other int"),
	)
	require.NoError(t, err)
	res, _ := m.Match(1)
	assert.Equal(t, "positive", res)
	res, _ = m.Match(-1)
	assert.Equal(t, "other int", res, "rejected guard should fall through")
	//
	m, err = fpmatch.Compile(
		fpmatch.When("n@_", typecheck.Int).If(positive).Then("positive").Otherwise(fpmatch.Value(nil)),
		fpmatch.When(typecheck.Int).Then("other int"),
	)
	require.NoError(t, err)
	res, err = m.Match(-1)
	require.NoError(t, err)
	assert.Nil(t, res, "else-result should be used")
}

func TestGuardErrorDisqualifiesCase(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	failing := func(n int) (bool, error) { return false, errors.New("guard exploded") }
	m, err := fpmatch.Compile(
		fpmatch.When(typecheck.Int).If(failing).Then("guarded").Otherwise("else"),
		fpmatch.Default().Then("default"),
	)
	require.NoError(t, err)
	res, err := m.Match(1)
	require.NoError(t, err)
	assert.Equal(t, "default", res)
	//
	m, err = fpmatch.Compile(fpmatch.When(typecheck.Int).If(failing).Then("guarded"))
	require.NoError(t, err)
	_, err = m.Match(1)
	require.Error(t, err)
	var gerr *fpmatch.GuardEvaluationError
	require.True(t, errors.As(err, &gerr), "expected guard error in %v", err)
	assert.Equal(t, 1, gerr.Case)
	assert.Contains(t, err.Error(), "Guard failed: guard exploded")
}

func TestResultErrorFallsThrough(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	m, err := fpmatch.Compile(
		fpmatch.When("n@_").Then(bind.Func(func(n int) int { return n + 1 }, "n")),
		fpmatch.Default().Then("not a number"),
	)
	require.NoError(t, err)
	res, err := m.Match(1)
	require.NoError(t, err)
	assert.Equal(t, 2, res)
	res, err = m.Match("a")
	require.NoError(t, err)
	assert.Equal(t, "not a number", res)
	//
	_, err = fpmatch.Match("a", fpmatch.When("n@_").Then(bind.Func(func(n int) int { return n }, "n")))
	require.Error(t, err)
	var rerr *fpmatch.ResultEvaluationError
	require.True(t, errors.As(err, &rerr))
	var aerr *bind.ArgumentError
	assert.True(t, errors.As(err, &aerr))
	assert.Contains(t, err.Error(), "arg 1 (n) must be of type int, string('a') given")
}

func TestExactCase(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	m, err := fpmatch.Compile(
		fpmatch.Is("_").Then("underscore"),
		fpmatch.Is([]int{1, 2}).Then("pair"),
		fpmatch.Default().Then("other"),
	)
	require.NoError(t, err)
	res, _ := m.Match("_")
	assert.Equal(t, "underscore", res)
	res, _ = m.Match("x")
	assert.Equal(t, "other", res)
	res, _ = m.Match([]int{1, 2})
	assert.Equal(t, "pair", res)
}

func TestRetSubscripts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	v := map[string]any{
		"key":    "b",
		"record": map[string]any{"a": 1, "b": []int{7, 8}},
	}
	res, err := fpmatch.Match(v,
		fpmatch.When(map[string]any{"key": "_", "record": "_"}).
			Bind("key", "record").
			Then(fpmatch.Ret("record[$key][1]")),
	)
	require.NoError(t, err)
	assert.Equal(t, 8, res)
	_, err = fpmatch.Match(v, fpmatch.When("r@_").Then(fpmatch.Ret("r[missing]")))
	assert.True(t, fpmatch.IsNoMatch(err))
}

type Address struct {
	City string
}

type Person struct {
	Name    string
	Address Address
}

func TestExtractPolicy(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	city := fpmatch.Extract("p", access.At().Field("Address").Field("City"))
	cases := []fpmatch.Case{fpmatch.When("p@_").Then(city)}
	strict, err := fpmatch.New(cases)
	require.NoError(t, err)
	res, err := strict.Match(Person{Name: "Frank", Address: Address{City: "Vienna"}})
	require.NoError(t, err)
	assert.Equal(t, "Vienna", res)
	_, err = strict.Match(map[string]any{"Name": "Frank"})
	require.Error(t, err)
	var derr *access.DestructureError
	assert.True(t, errors.As(err, &derr), "expected destructure error in %v", err)
	//
	soft, err := fpmatch.New(cases, fpmatch.DestructurePolicy(access.Soft))
	require.NoError(t, err)
	res, err = soft.Match(map[string]any{"Name": "Frank"})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestKeyHandlesInContext(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	ctx := compile.NewContext()
	hunter := ctx.Key().As("hunter")
	m, err := fpmatch.New([]fpmatch.Case{
		fpmatch.When(map[any]any{hunter: "wolf"}).Then(fpmatch.Ret("hunter")),
	}, fpmatch.WithContext(ctx))
	require.NoError(t, err)
	res, err := m.Match(map[string]string{"Peter": "wolf", "Paul": "sheep"})
	require.NoError(t, err)
	assert.Equal(t, "Peter", res)
	_, err = fpmatch.Compile(fpmatch.When(map[any]any{hunter: "wolf"}))
	assert.True(t, fpmatch.IsBuildError(err), "handle of a foreign context should be rejected")
}

func TestTryAndPatterns(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	m, err := fpmatch.New([]fpmatch.Case{
		fpmatch.When(1, 2, 3).Then("small"),
		fpmatch.Default().Then("large"),
	}, fpmatch.Lazy())
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())
	r := m.Try(2)
	assert.True(t, r.IsOk())
	ps, err := m.Patterns()
	require.NoError(t, err)
	assert.Equal(t, "any(1, 2, 3)", ps[0].String())
	assert.Nil(t, ps[1])
	m, _ = fpmatch.Compile(fpmatch.When(1).Then("one"))
	r = m.Try(2)
	_, err = r.Get()
	assert.True(t, fpmatch.IsNoMatch(err))
}

func TestConcurrentMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	for _, opts := range [][]fpmatch.Option{nil, {fpmatch.Lazy()}} {
		m, err := fpmatch.New([]fpmatch.Case{
			fpmatch.When([]any{"h", "*t"}).Then(bind.Func(func(h int, t []any) int { return h + len(t) }, "h", "t")),
			fpmatch.When(typecheck.Int).Then(bind.Func(func(n int) int { return -n })),
		}, opts...)
		require.NoError(t, err)
		var wg sync.WaitGroup
		results := make([]any, 32)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if i%2 == 0 {
					results[i], _ = m.Match([]int{i, 1, 2})
				} else {
					results[i], _ = m.Match(i)
				}
			}(i)
		}
		wg.Wait()
		for i, r := range results {
			expected := -i
			if i%2 == 0 {
				expected = i + 2
			}
			assert.Equal(t, expected, r, "goroutine %d", i)
		}
	}
}

func TestRestOutsideListIsBuildError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	for i, c := range []fpmatch.Case{
		fpmatch.When("*"),
		fpmatch.When("*tail"),
		fpmatch.When(compile.OneOf("*", 1)),
		fpmatch.When(compile.As("r", "*")),
		fpmatch.When(map[string]any{"k": "*"}),
	} {
		_, err := fpmatch.Compile(c.Then(1), fpmatch.Default().Then(2))
		assert.True(t, fpmatch.IsBuildError(err), "%d: expected build error, is %v", i, err)
	}
	res, err := fpmatch.Match([]any{1, 2, 3}, fpmatch.When([]any{"*", 3}).Then("ends with 3"))
	require.NoError(t, err)
	assert.Equal(t, "ends with 3", res)
}

func TestPredicateAfterCapture(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	positive := func(n int) bool { return n > 0 }
	m, err := fpmatch.Compile(
		fpmatch.When([]any{"h", positive}).Then(fpmatch.Ret("h")),
		fpmatch.Default().Then("other"),
	)
	require.NoError(t, err)
	res, err := m.Match([]any{7, 3})
	require.NoError(t, err)
	assert.Equal(t, 7, res)
	res, err = m.Match([]any{7, -3})
	require.NoError(t, err)
	assert.Equal(t, "other", res)
	// the predicate tests the element even after positional captures
	m, err = fpmatch.Compile(
		fpmatch.When([]any{`/^(\d+)$/`, positive}).Then("digits, then positive"),
	)
	require.NoError(t, err)
	res, err = m.Match([]any{"42", 1})
	require.NoError(t, err)
	assert.Equal(t, "digits, then positive", res)
}

type Resident struct {
	Home *Address
}

func (r Resident) Town() string {
	return r.Home.City
}

func TestPanickingMethodIsNoMatch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	m, err := fpmatch.Compile(
		fpmatch.When(access.At().Call("Town")).Then("has a town"),
		fpmatch.Default().Then("homeless"),
	)
	require.NoError(t, err)
	res, err := m.Match(Resident{})
	require.NoError(t, err)
	assert.Equal(t, "homeless", res)
	res, err = m.Match(Resident{Home: &Address{City: "Linz"}})
	require.NoError(t, err)
	assert.Equal(t, "has a town", res)
}

func TestCallRenamesParameters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "fpmatch")
	defer teardown()
	//
	minus := fpmatch.Call(func(x, y int) int { return x - y }, "b", "a")
	assert.Equal(t, "func(b int, a int) int", minus.String())
	m, err := fpmatch.Compile(fpmatch.When([]any{"a@_", "b@_"}).Then(minus))
	require.NoError(t, err)
	res, err := m.Match([]any{10, 3})
	require.NoError(t, err)
	assert.Equal(t, -7, res)
}
