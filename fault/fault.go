// error instances
//
// Provides a single instance of errors to allow easy comparison
package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// errors raised by the entry, log, ring, route, stream and sharedlog
// packages - keep in alphabetic order
var (
	ErrAccessDenied           = InvalidError("access denied by canAppend policy")
	ErrAlreadyInitialised     = ProcessError("already initialised")
	ErrClockNotMonotonic      = InvalidError("child clock does not exceed max parent clock")
	ErrClosed                 = ProcessError("log is closed")
	ErrGIDMismatch            = InvalidError("gid is not the maximum of parent gids")
	ErrHashMismatch           = InvalidError("entry hash does not match canonical bytes")
	ErrInvalidIPAddress       = InvalidError("invalid ip address")
	ErrInvalidLoggerChannel   = InvalidError("logger channel is invalid")
	ErrInvalidPortNumber      = InvalidError("invalid port number")
	ErrInvalidStructPointer   = InvalidError("configuration target is not a struct pointer")
	ErrNoAnnounceAddrs        = InvalidError("no announce addresses")
	ErrNoListenAddrs          = InvalidError("no listen addresses")
	ErrNoRoute                = NotFoundError("no route to target")
	ErrNotALeader             = InvalidError("peer is not a leader for this gid")
	ErrNotFoundIdentity       = NotFoundError("identity not found in keystore")
	ErrNotInitialised         = ProcessError("not initialised")
	ErrParentNotFound         = NotFoundError("parent entry not found")
	ErrSignatureInvalid       = InvalidError("signature is invalid")
	ErrTimeout                = ProcessError("operation timed out")
	ErrTransportFatal         = ProcessError("underlying transport stream died")
	ErrUndecodable            = InvalidError("wire data could not be decoded")

	// errors raised by the discovery package's peer-list encoding
	InvalidIpAddress = InvalidError("invalid ip address")
	InvalidTimestamp = InvalidError("invalid timestamp")
	NotPublicKey     = InvalidError("invalid public key")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
