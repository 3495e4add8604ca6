// Package retry executes fallible operations with bounded, classified retries.
//
// A Policy describes how many attempts to make and how the delay between them
// grows; an Executor applies the policy around an operation, consulting a
// classifier to decide whether a failure is worth retrying. Policies mirror
// the presets commonly needed in front of generative-AI HTTP APIs: rate-limit
// storms want long patient backoff, server blips want short aggressive one.
package retry
