// Null, Stream, File and RotatingFile all embed Base and differ only
// in their destination-specific write step, without duplicating the
// shared pipeline between them.
package handler
