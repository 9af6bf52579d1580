package cli

import (
	"fmt"
	"os"

	"github.com/partforge/partforge/internal/dsl"
	"github.com/partforge/partforge/internal/ir"
)

// loadDSL reads and compiles a DSL source file. Read failures are command
// errors (exit 2); compile failures are domain failures (exit 1) and are
// already rendered through the formatter when this returns.
func loadDSL(formatter *OutputFormatter, path string) (*ir.Part, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", WrapExitError(ExitCommandError, fmt.Sprintf("reading %s", path), err)
	}

	src := string(data)
	part, err := dsl.Compile(src)
	if err != nil {
		if ferr := formatter.Error(ErrCodeCompile, err.Error(), nil); ferr != nil {
			return nil, "", ferr
		}
		return nil, "", NewExitError(ExitFailure, "compilation failed")
	}
	formatter.VerboseLog("compiled part %q: %d params, %d features, %d chains",
		part.Name, len(part.Params), len(part.Features), len(part.Chains))
	return part, src, nil
}
