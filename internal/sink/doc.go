// Package sink implements the notification sink handed to an assessment
// service.
//
// A Sink is reference counted. It starts with one reference owned by its
// creator, gains one for every successful capability query or
// AcquireReference, and is destroyed inside the ReleaseReference call that
// brings the count to zero. Counting is lock-free; event delivery is
// serialized per sink so that progress and completion never interleave.
//
// The completion event is terminal: the first one is forwarded to the
// Presenter and closes Done, every later event is dropped and reported as
// apperrors.ErrEventAfterCompletion.
package sink
