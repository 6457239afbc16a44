// Package social implements the social graph operations: creating users,
// creating and removing directed FRIENDS_WITH edges, and listing a user's
// friends.
//
// Each operation takes a batch and returns a BatchReport with one ItemResult
// per input. Items are independent: a failing item is logged and reported,
// and the batch moves on. Zero-row matches are reported as OutcomeNotFound so
// callers can tell "nothing matched" apart from a real fault (OutcomeFailed).
package social
