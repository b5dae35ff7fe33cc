// Package abi implements the ABI manifest document (spec §6.4) and a
// TypeRef-directed deserializer (spec §4.4 (c)) used by the dispatcher to
// interpret method arguments.
package abi

// Manifest is the "wasm-abi/1" schema document.
type Manifest struct {
	SchemaTag string              `json:"schema_tag"`
	Types     map[string]TypeDef  `json:"types"`
	Methods   []MethodDef         `json:"methods"`
	Events    []EventDef          `json:"events"`
	StateRoot string              `json:"state_root"`
}

const SchemaTag = "wasm-abi/1"

// TypeDef is a named record, variant, or alias definition.
type TypeDef struct {
	Kind    string          `json:"kind"` // "record" | "variant" | "alias"
	Fields  []FieldDef      `json:"fields,omitempty"`  // record
	Variants []VariantDef   `json:"variants,omitempty"` // variant
	Alias   *TypeRef        `json:"alias,omitempty"`    // alias
}

type FieldDef struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

type VariantDef struct {
	Name    string   `json:"name"`
	Payload *TypeRef `json:"payload,omitempty"`
}

// MethodDef describes one dispatchable method.
type MethodDef struct {
	Name    string      `json:"name"`
	Params  []FieldDef  `json:"params"`
	Returns TypeRef     `json:"returns"`
	IsInit  bool        `json:"is_init"`
	IsView  bool        `json:"is_view"`
}

// EventDef describes a user-defined event.
type EventDef struct {
	Name    string   `json:"name"`
	Payload *TypeRef `json:"payload,omitempty"`
}

// TypeRef is a reference to a scalar, composite, or named type.
type TypeRef struct {
	Kind  string   `json:"kind"` // scalar name, "list", "map", "option", "unit", or "" when Ref is set
	Items *TypeRef `json:"items,omitempty"`
	Key   *TypeRef `json:"key,omitempty"`
	Value *TypeRef `json:"value,omitempty"`
	Inner *TypeRef `json:"inner,omitempty"`
	Ref   string   `json:"$ref,omitempty"`
}

// Scalar kind names recognized by the decoder.
const (
	ScalarBool   = "bool"
	ScalarU8     = "u8"
	ScalarU16    = "u16"
	ScalarU32    = "u32"
	ScalarU64    = "u64"
	ScalarI8     = "i8"
	ScalarI16    = "i16"
	ScalarI32    = "i32"
	ScalarI64    = "i64"
	ScalarF32    = "f32"
	ScalarF64    = "f64"
	ScalarString = "string"
	ScalarBytes  = "bytes"

	CompositeList   = "list"
	CompositeMap    = "map"
	CompositeOption = "option"
	CompositeUnit   = "unit"
)
