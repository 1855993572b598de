package common

import (
	"fmt"
)

// AliasTable lists the accepted input spellings for each enum value.
type AliasTable map[int][]string

// EnumRegistry provides utilities for managing enum string representations
// and the alias tables used to parse them from user input.
type EnumRegistry struct {
	mappings map[string]EnumStringMap
	aliases  map[string]map[string]int
}

// NewEnumRegistry creates a new EnumRegistry instance.
func NewEnumRegistry() *EnumRegistry {
	return &EnumRegistry{
		mappings: make(map[string]EnumStringMap),
		aliases:  make(map[string]map[string]int),
	}
}

// RegisterEnum registers an enum type with its string mapping and aliases.
// Aliases are matched exactly. order fixes which value claims an alias that
// appears under more than one value: the earlier value in order wins.
func (er *EnumRegistry) RegisterEnum(typeName string, mapping EnumStringMap, aliases AliasTable, order ...int) {
	er.mappings[typeName] = mapping

	reverse := make(map[string]int)
	for _, value := range order {
		for _, alias := range aliases[value] {
			if _, taken := reverse[alias]; !taken {
				reverse[alias] = value
			}
		}
	}
	er.aliases[typeName] = reverse
}

// FormatEnum formats an enum value for a registered type.
func (er *EnumRegistry) FormatEnum(typeName string, value int) string {
	if mapping, exists := er.mappings[typeName]; exists {
		if str, found := mapping[value]; found {
			return str
		}
	}
	return fmt.Sprintf("unknown_%s(%d)", typeName, value)
}

// GetEnumMapping returns the mapping for a registered enum type.
func (er *EnumRegistry) GetEnumMapping(typeName string) (EnumStringMap, bool) {
	mapping, exists := er.mappings[typeName]
	return mapping, exists
}

// ParseEnum parses a string to its enum value.
func (er *EnumRegistry) ParseEnum(typeName, str string) (int, bool) {
	reverse, exists := er.aliases[typeName]
	if !exists {
		return 0, false
	}
	value, found := reverse[str]
	return value, found
}

// Common enum mappings used throughout the codebase

// JoinTypeMapping maps join types to their string representations.
var JoinTypeMapping = EnumStringMap{
	0: "INNER_JOIN", // Inner
	1: "LEFT_JOIN",  // Left
	2: "RIGHT_JOIN", // Right
	3: "OUTER_JOIN", // Outer
	4: "XOR",        // Xor
}

// JoinTypeAliases lists the accepted spellings of each join type.
var JoinTypeAliases = AliasTable{
	0: {"I", "i", "IN", "In", "in", "INNER", "Inner", "inner"},
	1: {"L", "l", "LEFT", "Left", "left"},
	2: {"R", "r", "RIGHT", "Right", "right"},
	3: {"O", "o", "OUT", "Out", "out", "OUTER", "Outer", "outer"},
	4: {"X", "x", "XOR", "Xor", "xor"},
}

// SortModeMapping maps sort modes to their string representations.
var SortModeMapping = EnumStringMap{
	0: "no",      // NoSort
	1: "forward", // Forward
	2: "reverse", // Reverse
}

// SortModeAliases lists the accepted spellings of each sort mode. "no"
// accepts every negative boolean spelling, so F/f resolve to no sorting.
var SortModeAliases = AliasTable{
	0: {"N", "n", "NO", "No", "no", "F", "f", "FALSE", "False", "false"},
	1: {"F", "f", "FORWARD", "Forward", "forward"},
	2: {"R", "r", "REVERSE", "Reverse", "reverse"},
}

// DelimiterMapping maps delimiters to their file format names.
var DelimiterMapping = EnumStringMap{
	0: "tsv", // Tab
	1: "csv", // Comma
	2: "ssv", // Space
}

// DelimiterAliases lists the accepted spellings of each table format.
var DelimiterAliases = AliasTable{
	0: {"\t", "T", "t", "TSV", "Tsv", "tsv", "TAB", "Tab", "tab"},
	1: {",", "C", "c", "CSV", "Csv", "csv", "COMMA", "Comma", "comma"},
	2: {" ", "S", "s", "SSV", "Ssv", "ssv", "SPACE", "Space", "space"},
}

// BoolMapping maps booleans to their canonical spelling.
var BoolMapping = EnumStringMap{
	0: "no",
	1: "yes",
}

// BoolAliases lists the accepted spellings of yes/no answers.
var BoolAliases = AliasTable{
	0: {"N", "n", "NO", "No", "no", "F", "f", "FALSE", "False", "false"},
	1: {"Y", "y", "YES", "Yes", "yes", "T", "t", "TRUE", "True", "true"},
}

// Default enum registry with common mappings.
var defaultEnumRegistry = func() *EnumRegistry {
	registry := NewEnumRegistry()
	registry.RegisterEnum("JoinType", JoinTypeMapping, JoinTypeAliases, 0, 1, 2, 3, 4)
	registry.RegisterEnum("SortMode", SortModeMapping, SortModeAliases, 0, 1, 2)
	registry.RegisterEnum("Delimiter", DelimiterMapping, DelimiterAliases, 0, 1, 2)
	registry.RegisterEnum("Bool", BoolMapping, BoolAliases, 1, 0)
	return registry
}()

// FormatJoinType formats a join type enum value.
func FormatJoinType(joinType int) string {
	return FormatEnum(joinType, JoinTypeMapping)
}

// FormatSortMode formats a sort mode enum value.
func FormatSortMode(mode int) string {
	return FormatEnum(mode, SortModeMapping)
}

// FormatDelimiter formats a delimiter enum value as its file extension.
func FormatDelimiter(delim int) string {
	return FormatEnum(delim, DelimiterMapping)
}

// ParseJoinType parses a join type string.
func ParseJoinType(str string) (int, bool) {
	return defaultEnumRegistry.ParseEnum("JoinType", str)
}

// ParseSortMode parses a sort mode string.
func ParseSortMode(str string) (int, bool) {
	return defaultEnumRegistry.ParseEnum("SortMode", str)
}

// ParseDelimiter parses a table format or literal delimiter string.
func ParseDelimiter(str string) (int, bool) {
	return defaultEnumRegistry.ParseEnum("Delimiter", str)
}

// ParseBool parses a yes/no style answer.
func ParseBool(str string) (bool, bool) {
	value, ok := defaultEnumRegistry.ParseEnum("Bool", str)
	return value == 1, ok
}
