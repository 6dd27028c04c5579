// Copyright 2025 walteh LLC
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

/*
Package operation runs one folder-to-archive pack.

	+-----------+     +-----------+     +-----------+     +-----------+
	|  locator  | --> | provider  | --> |  extract  | --> |  repack   |
	|  (parse)  |     | (download)|     |  (filter) |     |   (zip)   |
	+-----------+     +-----------+     +-----+-----+     +-----+-----+
	                                          |                 |
	                                    +-----+-----------------+-----+
	                                    |       staging directory     |
	                                    +-----------------------------+

🔄 Flow:
 1. Parse the folder URL into a locator.Reference
 2. Download the full repository archive once
 3. Create the staging directory (only after a successful download)
 4. Stage every entry under the folder
 5. Zip the staging directory into the output archive
 6. Remove the staging directory, then print the success line

The staging directory is removed on every exit path once it exists, unless
the config asks to keep it.
*/
package operation
