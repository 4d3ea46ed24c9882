package debounce

import (
	"encoding/binary"
	"math/rand/v2"
	"reflect"
	"strconv"
	"sync"

	txmap "github.com/bsv-blockchain/go-tx-map"
	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies the attempt group an attempt belongs to.
type Fingerprint uint64

func (f Fingerprint) String() string {
	return strconv.FormatUint(uint64(f), 16)
}

// identityResolver computes fingerprints for invocations of one wrapped
// function.
//
// Reference-like values (pointers, maps, slices, channels and funcs) are
// compared by identity unless similar values are to be treated as the same:
// the first time a reference is seen it is given a random fragment, which is
// reused for as long as the wrapped function lives. Everything else is
// compared by value.
//
// The identity cache is keyed by address and type and holds no pointers, so it
// never keeps a value alive. Go's collector doesn't move objects, so a live
// value's address is stable. An address can only be reused once the previous
// value is unreachable, at which point sharing its fragment can't merge two
// live references. The cache grows with the number of distinct references
// seen.
type identityResolver struct {
	conf Config

	mux  sync.Mutex
	refs *txmap.SyncedMap[refKey, uint64]
}

type refKey struct {
	typ  reflect.Type
	addr uintptr
	len  int
}

func newIdentityResolver(conf Config) *identityResolver {
	return &identityResolver{
		conf: conf,
		refs: txmap.NewSyncedMap[refKey, uint64](),
	}
}

// fingerprint mixes the receiver fragment and the argument fragments into a
// single key.
func (r *identityResolver) fingerprint(inv Invocation) Fingerprint {
	d := xxhash.New()
	var buf [8]byte

	write := func(frag uint64) {
		binary.LittleEndian.PutUint64(buf[:], frag)
		_, _ = d.Write(buf[:])
	}

	if r.conf.DifferentThis {
		write(r.fragment(inv.Receiver, r.conf.TreatSimilarContextAsTheSame))
	}

	if r.conf.DifferentArgs {
		if r.conf.TreatSimilarArgsAsTheSame {
			args := inv.Args
			if args == nil {
				args = []any{}
			}
			write(structuralHash(args))
		} else {
			for _, arg := range inv.Args {
				write(r.fragment(arg, false))
			}
		}
	}

	return Fingerprint(d.Sum64())
}

func (r *identityResolver) fragment(v any, structural bool) uint64 {
	if structural {
		return structuralHash(v)
	}

	key, ok := referenceKey(v)
	if !ok {
		return structuralHash(v)
	}

	if frag, found := r.refs.Get(key); found {
		return frag
	}

	r.mux.Lock()
	defer r.mux.Unlock()

	if frag, found := r.refs.Get(key); found {
		return frag
	}

	frag := rand.Uint64()
	r.refs.Set(key, frag)

	return frag
}

// referenceKey returns the identity of v if v is a non-nil reference-like
// value.
func referenceKey(v any) (refKey, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return refKey{}, false
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func,
		reflect.UnsafePointer:
		if rv.IsNil() {
			return refKey{}, false
		}

		return refKey{typ: rv.Type(), addr: rv.Pointer()}, true
	case reflect.Slice:
		if rv.IsNil() {
			return refKey{}, false
		}

		return refKey{typ: rv.Type(), addr: rv.Pointer(), len: rv.Len()}, true
	default:
		return refKey{}, false
	}
}

// knownReferences returns the number of references in the identity cache.
func (r *identityResolver) knownReferences() int {
	return r.refs.Length()
}
