// Text and JSON are the two built-in renderers; both implement the
// BufferRenderer optional interface so handler.Base can render into a
// buffer it owns for the duration of a pipeline run instead of going
// through Render's own allocate-and-copy path.
package renderer
