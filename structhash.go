package debounce

import (
	"cmp"
	"encoding/binary"
	"maps"
	"math"
	"reflect"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// structHasher feeds a deterministic serialization of a value into an xxhash
// digest. Two values hash the same when they have the same dynamic types and
// deep-equal contents, whether or not they share memory.
//
// Every pointer, map and non-empty slice is serialized the first time it is
// reached. Reaching it again contributes nothing, so cyclic graphs terminate
// and shared references are walked once.
type structHasher struct {
	d       *xxhash.Digest
	visited map[visit]struct{}
	buf     [8]byte
}

type visit struct {
	typ  reflect.Type
	addr uintptr
	len  int
}

// structuralHash returns the structural hash of v.
func structuralHash(v any) uint64 {
	h := &structHasher{d: xxhash.New(), visited: map[visit]struct{}{}}

	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		h.tag('n')
	} else {
		h.dynamic(rv)
	}

	return h.d.Sum64()
}

// hashEntry hashes one map entry with a copy of the references visited so far,
// so that entries don't depend on the order they are hashed in. The entry's
// own visits are added to seen.
func (h *structHasher) hashEntry(k, v reflect.Value, seen map[visit]struct{}) (uint64, uint64) {
	child := &structHasher{d: xxhash.New(), visited: maps.Clone(h.visited)}

	child.value(k)
	kh := child.d.Sum64()

	child.d.Reset()
	child.value(v)
	vh := child.d.Sum64()

	maps.Copy(seen, child.visited)

	return kh, vh
}

func (h *structHasher) tag(b byte) {
	h.buf[0] = b
	_, _ = h.d.Write(h.buf[:1])
}

func (h *structHasher) u64(n uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], n)
	_, _ = h.d.Write(h.buf[:])
}

func (h *structHasher) str(s string) {
	h.u64(uint64(len(s)))
	_, _ = h.d.WriteString(s)
}

// enter marks v as visited. It returns false if it already was, in which
// case the reference contributes nothing.
func (h *structHasher) enter(v visit) bool {
	if _, ok := h.visited[v]; ok {
		return false
	}
	h.visited[v] = struct{}{}

	return true
}

func (h *structHasher) dynamic(rv reflect.Value) {
	h.tag('d')
	h.str(rv.Type().String())
	h.value(rv)
}

//nolint:gocyclo // one case per reflect.Kind
func (h *structHasher) value(rv reflect.Value) {
	if !rv.IsValid() {
		h.tag('n')

		return
	}

	switch rv.Kind() {
	case reflect.Bool:
		h.tag('b')
		if rv.Bool() {
			h.tag(1)
		} else {
			h.tag(0)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		h.tag('i')
		h.u64(uint64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		h.tag('u')
		h.u64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		h.tag('f')
		h.u64(math.Float64bits(rv.Float()))
	case reflect.Complex64, reflect.Complex128:
		c := rv.Complex()
		h.tag('c')
		h.u64(math.Float64bits(real(c)))
		h.u64(math.Float64bits(imag(c)))
	case reflect.String:
		h.tag('s')
		h.str(rv.String())
	case reflect.Interface:
		if rv.IsNil() {
			h.tag('n')

			return
		}
		h.dynamic(rv.Elem())
	case reflect.Pointer:
		if rv.IsNil() {
			h.tag('n')

			return
		}

		if !h.enter(visit{typ: rv.Type(), addr: rv.Pointer()}) {
			return
		}

		h.tag('p')
		h.value(rv.Elem())
	case reflect.Slice:
		if rv.IsNil() {
			h.tag('n')

			return
		}

		if rv.Len() > 0 &&
			!h.enter(visit{typ: rv.Type(), addr: rv.Pointer(), len: rv.Len()}) {
			return
		}

		h.list(rv)
	case reflect.Array:
		h.list(rv)
	case reflect.Map:
		if rv.IsNil() {
			h.tag('n')

			return
		}

		if !h.enter(visit{typ: rv.Type(), addr: rv.Pointer()}) {
			return
		}

		h.entries(rv)
	case reflect.Struct:
		t := rv.Type()
		h.tag('t')
		h.u64(uint64(rv.NumField()))
		for i := range rv.NumField() {
			h.str(t.Field(i).Name)
			h.value(rv.Field(i))
		}
	default:
		// Chan, Func and UnsafePointer have no contents to compare.
		h.tag('r')
		h.u64(uint64(rv.Pointer()))
	}
}

func (h *structHasher) list(rv reflect.Value) {
	h.tag('l')
	h.u64(uint64(rv.Len()))
	for i := range rv.Len() {
		h.value(rv.Index(i))
	}
}

func (h *structHasher) entries(rv reflect.Value) {
	type entry struct{ k, v uint64 }

	entries := make([]entry, 0, rv.Len())
	seen := map[visit]struct{}{}
	iter := rv.MapRange()
	for iter.Next() {
		k, v := h.hashEntry(iter.Key(), iter.Value(), seen)
		entries = append(entries, entry{k: k, v: v})
	}
	maps.Copy(h.visited, seen)

	slices.SortFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.k, b.k); c != 0 {
			return c
		}

		return cmp.Compare(a.v, b.v)
	})

	h.tag('m')
	h.u64(uint64(len(entries)))
	for _, e := range entries {
		h.u64(e.k)
		h.u64(e.v)
	}
}
