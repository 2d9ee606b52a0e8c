// Package loss provides the cost function used to score network outputs.
package loss

// Loss is a loss function with derivative.
type Loss interface {
	// Forward computes the loss between predicted and true values.
	Forward(yPred, yTrue []float64) float64

	// Backward computes the gradient of the loss w.r.t. prediction.
	Backward(yPred, yTrue []float64) []float64
}

// HalfSquaredError is the quadratic cost: sum((y_true - y_pred)^2) / 2.
type HalfSquaredError struct{}

// Forward computes sum((y_true - y_pred)^2 / 2)
func (HalfSquaredError) Forward(yPred, yTrue []float64) float64 {
	n := len(yPred)
	if n != len(yTrue) {
		panic("HalfSquaredError: prediction and target must have same length")
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue[i] - yPred[i]
		sum += (diff * diff) / 2
	}
	return sum
}

// Backward computes dL/dy_pred = y_pred - y_true
func (HalfSquaredError) Backward(yPred, yTrue []float64) []float64 {
	n := len(yPred)
	if n != len(yTrue) {
		panic("HalfSquaredError: prediction and target must have same length")
	}

	grad := make([]float64, n)
	for i := 0; i < n; i++ {
		grad[i] = yPred[i] - yTrue[i]
	}
	return grad
}
