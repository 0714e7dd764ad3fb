// Package nn implements the differentiable operators of a softmax
// regression classifier: Linear, Softmax and CrossEntropy.
//
// Each operator owns workspaces allocated once from an arena for a fixed
// batch size. Gradients are derived by hand; there is no autodiff tape.
package nn
