package fetchbody_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/advdv/fetchbody"
	"github.com/cockroachdb/errors"
)

func Example() {
	ctx := context.Background()
	rlm := fetchbody.NewRealm()

	owner := fetchbody.NewMixin(fetchbody.BodyFromBytes([]byte(`{"greeting":"hello"}`)), nil)

	v, err := fetchbody.Await(ctx, rlm.Queue(), owner.JSON(rlm))
	fmt.Println("Value:", v, err)

	// A body can only be consumed once
	_, err = fetchbody.Await(ctx, rlm.Queue(), owner.Text(rlm))
	fmt.Println("Unusable:", errors.Is(err, fetchbody.ErrUnusable))
	// Output:
	// Value: map[greeting:hello] <nil>
	// Unusable: true
}

func ExampleBody_Clone() {
	ctx := context.Background()
	rlm := fetchbody.NewRealm()

	body := fetchbody.BodyFromReader(strings.NewReader("streamed once, read twice"), nil)
	clone, err := body.Clone()
	if err != nil {
		panic(err)
	}

	original := fetchbody.NewMixin(body, nil)
	copied := fetchbody.NewMixin(clone, nil)

	a, _ := fetchbody.Await(ctx, rlm.Queue(), original.Text(rlm))
	b, _ := fetchbody.Await(ctx, rlm.Queue(), copied.Text(rlm))
	fmt.Println(a)
	fmt.Println(b)
	// Output:
	// streamed once, read twice
	// streamed once, read twice
}

func ExampleConsumeFormData() {
	ctx := context.Background()
	rlm := fetchbody.NewRealm()

	mt, _ := fetchbody.ParseMIMEType("application/x-www-form-urlencoded")
	owner := fetchbody.NewMixin(fetchbody.BodyFromBytes([]byte("name=Ada+Lovelace&lang=en&lang=fr")), mt)

	form, err := fetchbody.Await(ctx, rlm.Queue(), fetchbody.ConsumeFormData(rlm, &owner))
	if err != nil {
		panic(err)
	}

	name, _ := form.Get("name")
	fmt.Println("Name:", name.Value)
	fmt.Println("Languages:", len(form.GetAll("lang")))
	// Output:
	// Name: Ada Lovelace
	// Languages: 2
}

func ExampleConsume() {
	ctx := context.Background()
	rlm := fetchbody.NewRealm()
	owner := fetchbody.NewMixin(fetchbody.BodyFromBytes([]byte("a,b,c")), nil)

	fields := fetchbody.Consume(rlm, &owner, fetchbody.OpText, func(data []byte) ([]string, error) {
		return strings.Split(string(data), ","), nil
	})

	v, _ := fetchbody.Await(ctx, rlm.Queue(), fields)
	fmt.Println(v)
	// Output:
	// [a b c]
}

func ExampleCodeOf() {
	err := fetchbody.NewError(fetchbody.CodeSyntaxError, errors.New("unexpected token"))
	fmt.Println("Code:", fetchbody.CodeOf(err))

	// Wrapped errors preserve the code
	wrapped := fmt.Errorf("decode failed: %w", err)
	fmt.Println("Wrapped code:", fetchbody.CodeOf(wrapped))

	// Other errors return CodeUnknown
	fmt.Println("Plain error code:", fetchbody.CodeOf(errors.New("something went wrong")))
	// Output:
	// Code: SyntaxError
	// Wrapped code: SyntaxError
	// Plain error code: Unknown
}
