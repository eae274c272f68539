package feature

import "fmt"

func ExampleAdstock() {
	fmt.Println(Adstock([]float64{100, 0, 0, 0}, 0.5, 0))
	// Output: [100 50 25 12.5]
}

func ExampleHill() {
	for _, v := range Hill([]float64{-1, 0, 1, 3}, HillParams{EC50: 1, Slope: 1}) {
		fmt.Printf("%.3f\n", v)
	}
	// Output:
	// 0.000
	// 0.000
	// 0.500
	// 0.750
}
