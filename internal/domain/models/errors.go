package models

import "errors"

// ErrNotFound indicates the requested paddock, mob or animal does not exist.
var ErrNotFound = errors.New("record not found")

// ErrPaddockOccupied indicates the target paddock already holds a mob.
var ErrPaddockOccupied = errors.New("paddock already contains a mob")

// ErrInvalidArguments indicates an edit carried values that break the farm's
// invariants (non-positive area, negative pasture, unparseable date...).
var ErrInvalidArguments = errors.New("invalid arguments")
