// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package privdrop switches the process to an unprivileged user/group
// after a collector has bound its socket: an optional user or group to
// switch to post-bind. Implemented with golang.org/x/sys/unix, the
// idiomatic Go way to reach setuid/setgid rather than shelling out or
// hand-rolling syscall numbers.
package privdrop

import (
	"os/user"
	"strconv"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// To switches the current process to the named group and then user, in
// that order (group must be dropped first, while the process still has
// permission to change it). Either name may be empty to skip that switch.
func To(userName, groupName string) error {
	if groupName != "" {
		gid, err := lookupGID(groupName)
		if err != nil {
			return errors.Wrapf(err, "resolve group %q", groupName)
		}
		if err := unix.Setgid(gid); err != nil {
			return errors.Wrapf(err, "setgid %d", gid)
		}
	}

	if userName != "" {
		uid, err := lookupUID(userName)
		if err != nil {
			return errors.Wrapf(err, "resolve user %q", userName)
		}
		if err := unix.Setuid(uid); err != nil {
			return errors.Wrapf(err, "setuid %d", uid)
		}
	}

	return nil
}

func lookupUID(name string) (int, error) {
	u, err := user.Lookup(name)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(u.Uid)
}

func lookupGID(name string) (int, error) {
	g, err := user.LookupGroup(name)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(g.Gid)
}
