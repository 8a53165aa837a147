// Package harness runs scripted cross-link workflows described in YAML.
//
// A scenario loads one table, applies an ordered list of steps to it and
// checks assertions against the result. Scenarios replace one-off demo
// scripts: the same file documents a workflow and tests it.
//
// # Scenario Format
//
//	name: ambiguity
//	description: "Model a homo-dimer by cloning ProtA"
//	keymap:                 # optional, defaults to xlink.DefaultKeyMap()
//	  protein1: Protein 1
//	  protein2: Protein 2
//	  residue1: Residue 1
//	  residue2: Residue 2
//	  unique_id: UniqueID
//	  id_score: Score
//	data: |                 # or file: xlinks.csv, relative to the scenario
//	  Protein 1,Protein 2,Residue 1,Residue 2,UniqueID,Score
//	  ProtA,ProtB,1,10,1,1.0
//	steps:
//	  - op: set_value
//	    key: protein1
//	    value: ProtA.1
//	    where: ["protein1==ProtA"]
//	  - op: clone
//	    from: ProtA.1
//	    to: ProtA.2
//	assertions:
//	  - type: count
//	    count: 2
//	  - type: contains
//	    where: ["protein1==ProtA.2"]
//
// # Steps
//
//   - filter: keep records matching every where condition
//   - set_value: assign value to key on matching records (all without where)
//   - clone: append renamed copies of records naming from
//   - rename: rename proteins by the names mapping
//   - offset: shift residue numbers of protein by offset
//   - dedupe: drop records identical to an earlier one
//   - export: write included/excluded CSVs split by where
//   - snapshot: save the working set to Options.Snapshots as name
//   - sweep: score the set along an axis (needs Options.Evaluator), or
//     sweep two parameters against each other at a fixed position
//   - append: merge the table at file, parsed with the scenario's key map
//
// Sweep values are listed explicitly or generated with
// linspace: {start, stop, n}:
//
//	- op: sweep
//	  sweep:
//	    entity: ProtA
//	    at: [1, 0, 0]
//	    parameters:
//	      - name: psi
//	        values: [0, 0.5, 1]
//	      - name: sigma
//	        linspace: {start: 0.01, stop: 0.5, n: 10}
//	    out: surface.tsv
//
// # Assertion Types
//
//   - count: the working set has exactly count records
//   - groups: the set has exactly count unique-id groups
//   - contains: at least one record matches every where condition
//   - proteins: the distinct protein names equal the proteins list
//
// Each step's rendering is kept on the Result so golden files can pin the
// whole workflow, not only its end state.
package harness
