// Package dae holds the error values shared by the COLLADA decoding packages.
// Every error names the element it was raised for, so batch imports can
// report all broken elements of a document instead of stopping at the first.
package dae

import "fmt"

// UndefinedArrayError is returned when an accessor points to an array id
// that is not present in the store.
type UndefinedArrayError struct {
	Accessor string
	Array    string
}

func (e *UndefinedArrayError) Error() string {
	return fmt.Sprintf("accessor %q: undefined array %q", e.Accessor, e.Array)
}

// UndefinedSourceError is returned when an input references a <source> that
// does not exist in the document.
type UndefinedSourceError struct {
	Element string
	Source  string
}

func (e *UndefinedSourceError) Error() string {
	return fmt.Sprintf("%q: undefined source %q", e.Element, e.Source)
}

type UnknownFieldError struct {
	Accessor string
	Field    string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("accessor %q: unknown field %q", e.Accessor, e.Field)
}

type DuplicateFieldError struct {
	Accessor string
	Field    string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("accessor %q: field %q declared twice", e.Accessor, e.Field)
}

// OutOfBoundsError reports an accessor layout that reads past its array.
type OutOfBoundsError struct {
	Accessor string
	Need     int
	Len      int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("accessor %q: layout needs %d values, array has %d", e.Accessor, e.Need, e.Len)
}

type KindMismatchError struct {
	Accessor string
	Want     string
	Got      string
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("accessor %q: requested %s data from %s array", e.Accessor, e.Want, e.Got)
}

// MissingSemanticError is returned when an element lacks a required <input semantic>.
type MissingSemanticError struct {
	Element  string
	Semantic string
}

func (e *MissingSemanticError) Error() string {
	return fmt.Sprintf("%q: missing required input with semantic %s", e.Element, e.Semantic)
}

type IndexOutOfRangeError struct {
	Element string
	What    string
	Index   int
	Len     int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%q: %s index %d out of range [0:%d)", e.Element, e.What, e.Index, e.Len)
}

// InconsistentLengthError is returned when an index stream is too short for
// the layout its element declares.
type InconsistentLengthError struct {
	Element string
	Need    int
	Len     int
}

func (e *InconsistentLengthError) Error() string {
	return fmt.Sprintf("%q: index stream needs %d values, got %d", e.Element, e.Need, e.Len)
}
