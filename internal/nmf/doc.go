// Package nmf implements non-negative matrix factorization algorithms.
//
// Given a non-negative data matrix V (m x n), each algorithm produces
// non-negative factors W (m x k) and H (k x n) with V ~= W*H, where k is
// the requested rank. When V holds face images as columns, the columns of
// W are basis faces and the columns of H are per-image encodings used for
// clustering evaluation.
//
// Three factorizers are provided:
//
//   - Multiplicative: multiplicative updates minimizing the Frobenius
//     reconstruction error, with optional L1 and L2 penalties folded into
//     the denominators (Lee & Seung 2001).
//
//   - TanhRobust: a robust variant that reweights the residual with a
//     hyperbolic-tangent influence function, discounting heavily corrupted
//     pixels such as salt-and-pepper outliers.
//
//   - ProjectedGradient: alternating non-negative least squares solved by
//     projected gradients (Lin 2007, 'Projected Gradient Methods for
//     Non-negative Matrix Factorization', Neural Computation 19:2756).
//
// All factorizers are deterministic for a fixed Seed and keep every factor
// entry non-negative after each update.
package nmf
