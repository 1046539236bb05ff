// Package knapsack holds module-wide metadata.
package knapsack

// Version is the released version of the knapsack module.
const Version = "v0.3.0"
