// Package harness runs conformance scenarios against compiled cores.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: case1
//	description: "Three-ring core with a supercell control assembly"
//	core: ../cores/case1        # CUE package, relative to the scenario file
//	config: hexcore.yaml        # optional, relative to the scenario file
//	tolerance: 0.05             # optional mesh tolerance override
//	expect:
//	  warnings: 3
//	  codes: [W205]
//	  mesh: [-2, -1, 1, 2]
//	assertions:
//	  - type: layers
//	    location: 01A01
//	    record: "6 7 5"
//	  - type: canonical_id
//	    kind: section
//	    key: "supercell poison slug"
//	    id: 7
//	  - type: deck_contains
//	    deck: core
//	    text: "hex_dim"
//	  - type: lattice_row
//	    row: 3
//	    text: "     3      16   6   1   3  10"
//
// A scenario may instead expect the build to fail with expect.error, which
// matches a structural error code or a substring of the error message.
//
// # Golden Decks
//
// RunWithGolden compares both rendered decks against
// testdata/golden/{name}_xs.golden and {name}_core.golden. Decks carry no
// timestamps, so the comparison is byte exact.
package harness
