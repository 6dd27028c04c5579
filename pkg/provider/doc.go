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
Package provider defines where repository archives come from.

	            +-------------+
	            |  Provider   |
	            |  (Archive)  |
	            +------+------+
	                   |
	            +------+------+
	            |   GitHub    |
	            |  Provider   |
	            +-------------+

🎯 Purpose:
- Builds the archive URL for a locator.Reference
- Downloads the whole repository archive in a single GET

⚡ Behaviour:
- No authentication headers are sent
- No retries; any non-2xx status is a DownloadFailedError
- No client timeout; the caller's context is the only way to stop a download

Providers register themselves from init, so importing a provider package is
enough to make it available through Get.
*/
package provider
