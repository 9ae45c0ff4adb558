package cicheck

import (
	"os"
)

// ciVariables maps environment variables to the name of the CI service
// which sets them. The list is based on https://github.com/npm/ci-detect.
var ciVariables = []struct {
	name    string
	service string
}{
	{"GERRIT_PROJECT", "gerrit"},
	{"SYSTEM_TEAMFOUNDATIONCOLLECTIONURI", "azure-pipelines"},
	{"BITRISE_IO", "bitrise"},
	{"BUILDKITE", "buildkite"},
	{"CIRRUS_CI", "cirrus"},
	{"GITLAB_CI", "gitlab"},
	{"APPVEYOR", "appveyor"},
	{"CIRCLECI", "circle-ci"},
	{"SEMAPHORE", "semaphore"},
	{"DRONE", "drone"},
	{"GITHUB_ACTIONS", "github-actions"},
	{"TASKCLUSTER_ROOT_URL", "taskcluster"},
	{"JENKINS_URL", "jenkins"},
	{"HUDSON_URL", "hudson"},
	{"GO_PIPELINE_NAME", "gocd"},
	{"BITBUCKET_BUILD_NUMBER", "bitbucket-pipelines"},
	{"TEAMCITY_VERSION", "teamcity"},
	{"CODEBUILD_SRC_DIR", "aws-codebuild"},
	{"HARNESS_BUILD_ID", "harness"},
	{"CF_BUILD_ID", "codefresh"},
	{"TRAVIS", "travis-ci"},
	{"BUILDER_OUTPUT", "google-cloud-build"},
}

// CIName returns the name of the CI service the process runs in, or an
// empty string if none was detected.
func CIName() string {
	for _, v := range ciVariables {
		if os.Getenv(v.name) != "" {
			return v.service
		}
	}
	if os.Getenv("CI") != "" {
		return "custom"
	}
	return ""
}

func IsCIEnvironment() bool {
	return CIName() != ""
}
