package fuzztests

import (
	"context"
	"errors"
	"testing"
	"time"

	"bugfree/internal/check"
	"bugfree/internal/diag"
	"bugfree/internal/fix"
	"bugfree/internal/oracle"
	"bugfree/internal/phpparse"
	"bugfree/internal/qname"
	"bugfree/internal/resolve"
	"bugfree/internal/source"
	"bugfree/internal/testkit"
)

// checkTimeout is the maximum time allowed for one input. If a file takes
// longer, it indicates a potential infinite loop.
const checkTimeout = 5 * time.Second

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}

func fuzzOracle() oracle.Oracle {
	return oracle.Chain{oracle.Merge(
		oracle.Builtins(),
		oracle.NewRegistry(qname.Parse(`lib\Base`), qname.Parse(`lib\Other`), qname.Parse(`x\Y`)),
	)}
}

func FuzzParseBuildsTree(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		fs := source.NewFileSet()
		sf := fs.Get(fs.AddVirtual("fuzz.php", input))

		tree, err := phpparse.Parse(context.Background(), sf.Path, sf.Content)
		if err != nil {
			return
		}
		if err := testkit.CheckTreeInvariants(tree, sf); err != nil {
			t.Fatalf("tree invariant: %v", err)
		}
	})
}

// FuzzCheckNoHang runs the checker in both modes and applies the fixes.
// It uses a timeout to detect infinite loops.
func FuzzCheckNoHang(f *testing.F) {
	addCorpusSeeds(f)
	o := fuzzOracle()
	levels := diag.DefaultLevels()

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)
		fs := source.NewFileSet()
		sf := fs.Get(fs.AddVirtual("fuzz.php", input))

		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() {
			tree, err := phpparse.Parse(ctx, sf.Path, sf.Content)
			if err != nil {
				done <- nil
				return
			}
			for _, autofix := range []bool{false, true} {
				res := resolve.New(o, resolve.DefaultTables(), resolve.Options{AutoFix: autofix, Hints: 3})
				result, err := check.Run(tree, res, levels)
				if errors.Is(err, check.ErrMalformedTree) {
					continue
				}
				if err != nil {
					done <- err
					return
				}
				if err := testkit.CheckResultInvariants(result, sf); err != nil {
					done <- err
					return
				}
				fix.ApplyLines(sf.Lines(), result.Fixes)
			}
			done <- nil
		}()

		select {
		case err := <-done:
			if err != nil {
				t.Fatalf("check: %v", err)
			}
		case <-ctx.Done():
			t.Fatalf("check timed out after %v on input of %d bytes", checkTimeout, len(input))
		}
	})
}
