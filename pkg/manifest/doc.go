// Package manifest reads and writes package.json files.
//
// Only the fields shelf acts on are decoded into Manifest. Writing goes
// through the original document so keys shelf does not own keep their
// values and their order; only the dependency fields are re-rendered, and a
// dependency field left empty is dropped from the document.
package manifest
