// Package logging provides the logging interface used across winsatrun.
// Components depend on Logger rather than on a concrete backend; the default
// backend is zerolog, with an adapter for the standard library logger.
package logging
