package delay_test

import (
	"fmt"

	"github.com/cwbudde/algo-jcrev/dsp/delay"
)

func ExampleRender() {
	out, err := delay.Render([]int16{1000, 500}, 0.697, 2)
	if err != nil {
		panic(err)
	}
	fmt.Println(out)

	// Output:
	// [1000 500 697 348]
}
