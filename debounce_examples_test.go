package debounce_test

import (
	"fmt"
	"time"

	debounce "github.com/Oriery/advanced-throttle-debounce"
)

func ExampleNew() {
	// Wait 100 milliseconds since the last call before calling the callback
	// function.
	debounced, err := debounce.New(100*time.Millisecond, func() {
		fmt.Println("Hello, world!")
	})
	if err != nil {
		panic(err)
	}

	debounced()
	time.Sleep(50 * time.Millisecond) // +50ms = 50ms
	debounced()
	time.Sleep(50 * time.Millisecond) // +50ms = 100ms
	debounced()
	time.Sleep(200 * time.Millisecond) // +200ms = 300ms, trailing at 200ms

	// Output: Hello, world!
}

func ExampleNewMutable() {
	debounced, err := debounce.NewMutable(100 * time.Millisecond)
	if err != nil {
		panic(err)
	}

	for i := range 5 {
		debounced(func() { fmt.Printf("f%d\n", i) })
	}
	time.Sleep(200 * time.Millisecond) // trailing at 100ms

	// Output: f4
}

func ExampleWrap() {
	save := debounce.Sync(func(inv debounce.Invocation) (string, error) {
		return fmt.Sprintf("saved %v", inv.Args[0]), nil
	})

	w, err := debounce.Wrap(save, debounce.Wait(50*time.Millisecond))
	if err != nil {
		panic(err)
	}

	// Attempts with different arguments are debounced separately.
	a := w.Attempt(nil, "a")
	w.Attempt(nil, "a")
	b := w.Attempt(nil, "b")
	fmt.Println(w.Pending())

	for _, f := range []*debounce.Future[string]{a, b} {
		v, err := f.Result()
		fmt.Println(v, err)
	}
	// Output:
	// 2
	// saved a <nil>
	// saved b <nil>
}

func ExampleWrap_throttle() {
	calls := 0
	w, err := debounce.Wrap(
		func(debounce.Invocation) debounce.Outcome[int] {
			calls++

			return debounce.Value(calls)
		},
		debounce.Leading(true),
		debounce.Trailing(false),
		debounce.Wait(100*time.Millisecond),
	)
	if err != nil {
		panic(err)
	}

	// The leading call runs right away and resolves the group.
	v, _ := w.Attempt(nil).Result()
	fmt.Println(v)

	// Later attempts in the same group share its result.
	v, _ = w.Attempt(nil).Result()
	fmt.Println(v)
	// Output:
	// 1
	// 1
}

func ExampleLoadOptions() {
	opts, err := debounce.LoadOptions([]byte(`
leading: true
wait: 250ms
maxWait: 1s
`))
	if err != nil {
		panic(err)
	}

	conf, err := opts.Validate()
	if err != nil {
		panic(err)
	}

	fmt.Println(conf.Leading, conf.Trailing, conf.Wait, conf.MaxWait)
	// Output: true true 250ms 1s
}
