// Package linedescriptor binds the OpenCV line_descriptor module: line
// detection with BinaryDescriptor (EDLine based) and LSDDetector, binary
// descriptor computation, Hamming matching with BinaryDescriptorMatcher,
// and keyline drawing helpers.
//
// Every object wrapping native state is backed by a handle.Owned and must
// be closed; Close is idempotent. Plain records (KeyLine, DMatch, LSDParam)
// are marshalled by field copy and carry no native state.
//
// All operations take a Runtime, normally a *native.Instance holding the
// glue module. Tests substitute a fake.
package linedescriptor
