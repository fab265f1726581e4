// =============================================================================
// SAT Extrato - Main Entry Point
// =============================================================================
//
// USAGE:
//   extrato render FILE    - Preview the receipt of one CF-e document
//   extrato batch          - Render every document of the input directory
//   extrato validate       - Validate the configuration file
//   extrato version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/                 : CLI command definitions (Cobra)
//   - internal/cfe         : CF-e XML document model
//   - internal/extrato     : receipt layout engine
//   - internal/layout      : border fit, wrapping, transliteration
//   - internal/sink        : printer interface, text preview, recorder
//   - internal/converter   : batch pipeline
//   - internal/report      : XLSX batch summary
//   - pkg/utils            : file discovery, archival and naming
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sat-extrato/cmd"
)

func main() {
	cmd.Execute()
}
