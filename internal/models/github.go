package models

// GitHubRepoSpec maps directly onto GitHub's create-repository request.
type GitHubRepoSpec struct {
	Name                string `json:"name"`
	Description         string `json:"description,omitempty"`
	Private             bool   `json:"private"`
	Org                 string `json:"org,omitempty"`
	AutoInit            bool   `json:"auto_init,omitempty"`
	GitignoreTemplate   string `json:"gitignore_template,omitempty"`
	AllowSquashMerge    *bool  `json:"allow_squash_merge,omitempty"`
	AllowMergeCommit    *bool  `json:"allow_merge_commit,omitempty"`
	AllowRebaseMerge    *bool  `json:"allow_rebase_merge,omitempty"`
	DeleteBranchOnMerge *bool  `json:"delete_branch_on_merge,omitempty"`
}

func (s *GitHubRepoSpec) Validate() error {
	if s.Name == "" {
		return Validationf("name is required")
	}
	return nil
}

// GitHubRepo is the fixed subset of GitHub's repository response relayed to
// callers.
type GitHubRepo struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Private       bool   `json:"private"`
	HTMLURL       string `json:"html_url"`
	SSHURL        string `json:"ssh_url"`
	CloneURL      string `json:"clone_url"`
	DefaultBranch string `json:"default_branch"`
	Description   string `json:"description,omitempty"`
	Visibility    string `json:"visibility,omitempty"`
}

// GitHubUser is the minimal profile cached in a session.
type GitHubUser struct {
	Login     string `json:"login"`
	ID        int64  `json:"id"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	HTMLURL   string `json:"html_url,omitempty"`
}
