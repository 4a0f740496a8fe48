//
// Tencent is pleased to support the open source community by making trpc-cardgen available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-cardgen is licensed under the Apache License Version 2.0.
//
//

package engine

import "trpc.group/trpc-go/trpc-cardgen/quota"

const (
	defaultPhotoThreshold = 1
	defaultMaxDelivered   = 3
)

// Opts is the configuration for the engine.
type Opts struct {
	photoThreshold int
	maxDelivered   int
	freeLimit      int64
	ownerID        int64
	ownerUsername  string
}

var defaultOpts = Opts{
	photoThreshold: defaultPhotoThreshold,
	maxDelivered:   defaultMaxDelivered,
	freeLimit:      quota.DefaultFreeLimit,
}

// Opt is the option for the engine.
type Opt func(*Opts)

// WithPhotoThreshold sets how many photos a session collects before moving
// on to the brief. Values below 1 are ignored.
func WithPhotoThreshold(n int) Opt {
	return func(o *Opts) {
		if n >= 1 {
			o.photoThreshold = n
		}
	}
}

// WithMaxDelivered caps how many generated images are delivered per request.
func WithMaxDelivered(n int) Opt {
	return func(o *Opts) {
		if n >= 1 {
			o.maxDelivered = n
		}
	}
}

// WithFreeLimit sets the free request limit per user.
func WithFreeLimit(n int64) Opt {
	return func(o *Opts) {
		if n > 0 {
			o.freeLimit = n
		}
	}
}

// WithOwner sets the owner account, which bypasses the quota gate and may
// run the admin commands. The username is shown in user-facing texts.
func WithOwner(id int64, username string) Opt {
	return func(o *Opts) {
		o.ownerID = id
		o.ownerUsername = username
	}
}
