// pkg/installer/installer_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (testutil.TestEnvironment), FakeRunner
// PURPOSE: Test add, link, update and remove against a real store and consumer

package installer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/shelf/pkg/errors"
	"github.com/arthur-debert/shelf/pkg/filesystem"
	"github.com/arthur-debert/shelf/pkg/installer"
	"github.com/arthur-debert/shelf/pkg/lockfile"
	"github.com/arthur-debert/shelf/pkg/manifest"
	"github.com/arthur-debert/shelf/pkg/testutil"
	"github.com/arthur-debert/shelf/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInstaller(env *testutil.TestEnvironment) *installer.Installer {
	return installer.New(env.FS, env.Store, env.Registry, env.Runner, installer.Settings{
		StagingFolder:      testutil.StagingFolder,
		LockfileName:       testutil.LockfileName,
		PostInstallScripts: []string{"postinstall"},
		PureForWorkspaces:  true,
	})
}

func publishLeftPad(t *testing.T, env *testutil.TestEnvironment, content string) {
	testutil.NewPackage(t, env.Dir("src", "left-pad"), "left-pad", "1.0.0").
		File("index.js", content).
		PublishTo(env.Store)
}

func loadLock(t *testing.T, dir string) *lockfile.Lockfile {
	t.Helper()
	lock, err := lockfile.Load(filesystem.NewOS(), dir, testutil.LockfileName)
	require.NoError(t, err)
	return lock
}

func TestAddFreshConsumer(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	publishLeftPad(t, env, "module.exports = 1\n")
	app := testutil.NewConsumer(t, env.Dir("app")).Dependency("left-pad", "^1.0.0").Build()

	results, err := newInstaller(env).AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1.0.0", results[0].Version)
	assert.Equal(t, "^1.0.0", results[0].Replaced)
	assert.Equal(t, lockfile.ModeFile, results[0].Mode)
	assert.Equal(t, app, results[0].ConsumerDir)

	m := testutil.ReadManifest(t, app)
	assert.Equal(t, "file:.shelf/left-pad", m.Dependencies["left-pad"])

	assert.Equal(t, "module.exports = 1\n", testutil.ReadFile(t, filepath.Join(app, ".shelf", "left-pad", "index.js")))
	assert.Equal(t, "module.exports = 1\n", testutil.ReadFile(t, filepath.Join(app, "node_modules", "left-pad", "index.js")))
	assert.False(t, testutil.IsSymlink(filepath.Join(app, "node_modules", "left-pad")))

	entry, ok := loadLock(t, app).Get("left-pad")
	require.True(t, ok)
	assert.True(t, entry.File)
	assert.Equal(t, "^1.0.0", entry.Replaced)
	assert.Equal(t, results[0].Signature, entry.Signature)

	assert.Equal(t, []string{app}, env.ReloadRegistry().List("left-pad"))
}

func TestAddTwiceIsNoop(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	publishLeftPad(t, env, "module.exports = 1\n")
	app := testutil.NewConsumer(t, env.Dir("app")).Dependency("left-pad", "^1.0.0").Build()
	inst := newInstaller(env)

	_, err := inst.AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app})
	require.NoError(t, err)
	lockBefore := testutil.ReadFile(t, filepath.Join(app, testutil.LockfileName))
	manifestBefore := testutil.ReadFile(t, filepath.Join(app, "package.json"))

	results, err := inst.AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, lockBefore, testutil.ReadFile(t, filepath.Join(app, testutil.LockfileName)))
	assert.Equal(t, manifestBefore, testutil.ReadFile(t, filepath.Join(app, "package.json")))
}

func TestForceAddKeepsReplacedValue(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	publishLeftPad(t, env, "module.exports = 1\n")
	app := testutil.NewConsumer(t, env.Dir("app")).Dependency("left-pad", "^1.0.0").Build()
	inst := newInstaller(env)

	_, err := inst.AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app})
	require.NoError(t, err)

	results, err := inst.AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app, Force: true})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].Replaced)

	entry, _ := loadLock(t, app).Get("left-pad")
	assert.Equal(t, "^1.0.0", entry.Replaced)
}

func TestAddRestagesChangedStoreEntry(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	publishLeftPad(t, env, "module.exports = 1\n")
	app := testutil.NewConsumer(t, env.Dir("app")).Build()
	inst := newInstaller(env)

	_, err := inst.AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app})
	require.NoError(t, err)

	publishLeftPad(t, env, "module.exports = 2\n")
	results, err := inst.AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "module.exports = 2\n", testutil.ReadFile(t, filepath.Join(app, "node_modules", "left-pad", "index.js")))
}

func TestAddSkipsUnknownPackages(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	publishLeftPad(t, env, "x\n")
	app := testutil.NewConsumer(t, env.Dir("app")).Build()

	results, err := newInstaller(env).AddPackages(context.Background(), []string{"missing", "bad/name", "left-pad"}, installer.AddOptions{WorkingDir: app})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "left-pad", results[0].Name)
}

func TestAddWithoutManifestIsNoop(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	publishLeftPad(t, env, "x\n")
	empty := env.Dir("empty")
	require.NoError(t, os.MkdirAll(empty, 0755))

	results, err := newInstaller(env).AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: empty})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NoDirExists(t, filepath.Join(empty, ".shelf"))
}

func TestLinkModes(t *testing.T) {
	t.Run("link_leaves_manifest_alone", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		publishLeftPad(t, env, "x\n")
		app := testutil.NewConsumer(t, env.Dir("app")).Dependency("left-pad", "^1.0.0").Build()

		results, err := newInstaller(env).AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app, Link: true})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, lockfile.ModeLink, results[0].Mode)

		assert.Equal(t, "^1.0.0", testutil.ReadManifest(t, app).Dependencies["left-pad"])
		assert.True(t, testutil.IsSymlink(filepath.Join(app, "node_modules", "left-pad")))
		assert.Equal(t, "x\n", testutil.ReadFile(t, filepath.Join(app, "node_modules", "left-pad", "index.js")))

		entry, _ := loadLock(t, app).Get("left-pad")
		assert.Equal(t, lockfile.ModeLink, entry.Mode())
	})

	t.Run("link_dep_writes_link_locator", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		publishLeftPad(t, env, "x\n")
		app := testutil.NewConsumer(t, env.Dir("app")).Build()

		_, err := newInstaller(env).AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app, LinkDep: true})
		require.NoError(t, err)

		assert.Equal(t, "link:.shelf/left-pad", testutil.ReadManifest(t, app).Dependencies["left-pad"])
		assert.True(t, testutil.IsSymlink(filepath.Join(app, "node_modules", "left-pad")))
		entry, _ := loadLock(t, app).Get("left-pad")
		assert.True(t, entry.Link)
	})

	t.Run("switching_to_link_replaces_copy", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		publishLeftPad(t, env, "x\n")
		app := testutil.NewConsumer(t, env.Dir("app")).Build()
		inst := newInstaller(env)

		_, err := inst.AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app})
		require.NoError(t, err)
		require.False(t, testutil.IsSymlink(filepath.Join(app, "node_modules", "left-pad")))

		results, err := inst.AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app, Link: true})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, testutil.IsSymlink(filepath.Join(app, "node_modules", "left-pad")))
	})

	t.Run("link_and_link_dep_are_exclusive", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app := testutil.NewConsumer(t, env.Dir("app")).Build()

		_, err := newInstaller(env).AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app, Link: true, LinkDep: true})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestAddDevDependencies(t *testing.T) {
	t.Run("dev_moves_out_of_dependencies", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		publishLeftPad(t, env, "x\n")
		app := testutil.NewConsumer(t, env.Dir("app")).Dependency("left-pad", "^1.0.0").Build()

		results, err := newInstaller(env).AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app, Dev: true})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "^1.0.0", results[0].Replaced)

		m := testutil.ReadManifest(t, app)
		assert.NotContains(t, m.Dependencies, "left-pad")
		assert.Equal(t, "file:.shelf/left-pad", m.DevDependencies["left-pad"])
	})

	t.Run("dev_only_package_stays_in_dev", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		publishLeftPad(t, env, "x\n")
		app := testutil.NewConsumer(t, env.Dir("app")).DevDependency("left-pad", "~1.0.0").Build()

		_, err := newInstaller(env).AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app})
		require.NoError(t, err)

		m := testutil.ReadManifest(t, app)
		assert.Nil(t, m.Dependencies)
		assert.Equal(t, "file:.shelf/left-pad", m.DevDependencies["left-pad"])
	})
}

func TestAddPureForWorkspaces(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	publishLeftPad(t, env, "x\n")
	app := testutil.NewConsumer(t, env.Dir("app")).With("workspaces", []string{"packages/*"}).Build()
	manifestBefore := testutil.ReadFile(t, filepath.Join(app, "package.json"))

	results, err := newInstaller(env).AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, lockfile.ModePure, results[0].Mode)

	assert.Equal(t, manifestBefore, testutil.ReadFile(t, filepath.Join(app, "package.json")))
	assert.FileExists(t, filepath.Join(app, ".shelf", "left-pad", "index.js"))
	assert.NoDirExists(t, filepath.Join(app, "node_modules"))
	assert.Empty(t, env.Runner.Names())
	assert.Equal(t, []string{app}, env.ReloadRegistry().List("left-pad"))

	t.Run("explicit_pure_false_overrides", func(t *testing.T) {
		pure := false
		results, err := newInstaller(env).AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app, Pure: &pure})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, lockfile.ModeFile, results[0].Mode)
		assert.DirExists(t, filepath.Join(app, "node_modules", "left-pad"))
	})
}

func TestPostInstall(t *testing.T) {
	setup := func(t *testing.T) (*testutil.TestEnvironment, string) {
		env := testutil.NewTestEnvironment(t)
		testutil.NewPackage(t, env.Dir("src", "native"), "native", "1.0.0").
			Script("postinstall", "node build.js").
			File("build.js", "//\n").
			PublishTo(env.Store)
		return env, testutil.NewConsumer(t, env.Dir("app")).Build()
	}

	t.Run("runs_in_staged_copy", func(t *testing.T) {
		env, app := setup(t)
		_, err := newInstaller(env).AddPackages(context.Background(), []string{"native"}, installer.AddOptions{WorkingDir: app})
		require.NoError(t, err)

		ran := env.Runner.Ran()
		require.Len(t, ran, 1)
		assert.Equal(t, "postinstall", ran[0].Name)
		assert.Equal(t, filepath.Join(app, ".shelf", "native"), ran[0].Dir)
	})

	t.Run("skip_scripts", func(t *testing.T) {
		env, app := setup(t)
		_, err := newInstaller(env).AddPackages(context.Background(), []string{"native"}, installer.AddOptions{WorkingDir: app, SkipScripts: true})
		require.NoError(t, err)
		assert.Empty(t, env.Runner.Names())
	})

	t.Run("failure_aborts_batch", func(t *testing.T) {
		env, app := setup(t)
		env.Runner.FailOn("postinstall")

		_, err := newInstaller(env).AddPackages(context.Background(), []string{"native"}, installer.AddOptions{WorkingDir: app})
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrScriptFailure))
		assert.NoFileExists(t, filepath.Join(app, testutil.LockfileName))
		assert.Empty(t, env.ReloadRegistry().Names())
	})
}

func TestAddLinksExecutables(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	testutil.NewPackage(t, env.Dir("src", "tool"), "@acme/tool", "1.0.0").
		With("bin", map[string]string{"acme": "bin/acme.js"}).
		File("bin/acme.js", "#!/usr/bin/env node\n").
		PublishTo(env.Store)
	app := testutil.NewConsumer(t, env.Dir("app")).Build()

	_, err := newInstaller(env).AddPackages(context.Background(), []string{"@acme/tool"}, installer.AddOptions{WorkingDir: app})
	require.NoError(t, err)

	link := filepath.Join(app, "node_modules", ".bin", "acme")
	assert.True(t, testutil.IsSymlink(link))
	info, err := os.Stat(link)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0100)
	assert.Equal(t, "file:.shelf/@acme/tool", testutil.ReadManifest(t, app).Dependencies["@acme/tool"])
}

func TestAddSkipsExecutablesOutsidePackage(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	outside := env.Dir("outside.sh")
	testutil.WriteFile(t, outside, "echo hi\n")
	testutil.NewPackage(t, env.Dir("src", "evil"), "evil", "1.0.0").
		With("bin", map[string]string{
			"../../escaped": "bin/ok.js",
			"outside":       "../../../outside.sh",
			"ok":            "bin/ok.js",
		}).
		File("bin/ok.js", "#!/usr/bin/env node\n").
		PublishTo(env.Store)
	app := testutil.NewConsumer(t, env.Dir("app")).Build()

	_, err := newInstaller(env).AddPackages(context.Background(), []string{"evil"}, installer.AddOptions{WorkingDir: app})
	require.NoError(t, err)

	assert.True(t, testutil.IsSymlink(filepath.Join(app, "node_modules", ".bin", "ok")))
	assert.False(t, testutil.IsSymlink(filepath.Join(app, "escaped")))
	assert.False(t, testutil.IsSymlink(filepath.Join(app, "node_modules", ".bin", "outside")))

	info, err := os.Stat(outside)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestUpdate(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	publishLeftPad(t, env, "module.exports = 1\n")
	app := testutil.NewConsumer(t, env.Dir("app")).Build()
	inst := newInstaller(env)

	_, err := inst.AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app, Link: true})
	require.NoError(t, err)

	publishLeftPad(t, env, "module.exports = 2\n")
	result, err := inst.Update(context.Background(), installer.UpdateOptions{WorkingDir: app, Names: []string{"left-pad", "gone"}})
	require.NoError(t, err)

	require.Len(t, result.Results, 1)
	assert.Equal(t, lockfile.ModeLink, result.Results[0].Mode)
	assert.Equal(t, "module.exports = 2\n", testutil.ReadFile(t, filepath.Join(app, "node_modules", "left-pad", "index.js")))
	assert.Equal(t, []types.Installation{{Name: "gone", WorkingDir: app}}, result.InstallationsToRemove)
}

func TestUpdateWithoutManifest(t *testing.T) {
	env := testutil.NewTestEnvironment(t)
	dir := env.Dir("deleted")
	require.NoError(t, os.MkdirAll(dir, 0755))

	result, err := newInstaller(env).Update(context.Background(), installer.UpdateOptions{WorkingDir: dir, Names: []string{"left-pad"}})
	require.NoError(t, err)
	assert.Empty(t, result.Results)
	assert.Equal(t, []types.Installation{{Name: "left-pad", WorkingDir: dir}}, result.InstallationsToRemove)
}

func TestRemove(t *testing.T) {
	t.Run("restores_replaced_value", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		publishLeftPad(t, env, "x\n")
		app := testutil.NewConsumer(t, env.Dir("app")).Dependency("left-pad", "^1.0.0").Build()
		inst := newInstaller(env)

		_, err := inst.AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app})
		require.NoError(t, err)

		result, err := inst.Remove(context.Background(), installer.RemoveOptions{WorkingDir: app, Names: []string{"left-pad", "other"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"left-pad"}, result.Removed)
		assert.Equal(t, []string{"other"}, result.Skipped)

		assert.Equal(t, "^1.0.0", testutil.ReadManifest(t, app).Dependencies["left-pad"])
		assert.NoDirExists(t, filepath.Join(app, ".shelf"))
		assert.NoDirExists(t, filepath.Join(app, "node_modules", "left-pad"))
		assert.NoFileExists(t, filepath.Join(app, testutil.LockfileName))
		assert.Empty(t, env.ReloadRegistry().List("left-pad"))
	})

	t.Run("drops_added_dependency", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		publishLeftPad(t, env, "x\n")
		app := testutil.NewConsumer(t, env.Dir("app")).Build()
		inst := newInstaller(env)

		_, err := inst.AddPackages(context.Background(), []string{"left-pad"}, installer.AddOptions{WorkingDir: app, LinkDep: true})
		require.NoError(t, err)

		_, err = inst.Remove(context.Background(), installer.RemoveOptions{WorkingDir: app, All: true})
		require.NoError(t, err)

		m := testutil.ReadManifest(t, app)
		_, ok := m.Dependency(manifest.Dependencies, "left-pad")
		assert.False(t, ok)
		_, err = os.Lstat(filepath.Join(app, "node_modules", "left-pad"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("requires_names", func(t *testing.T) {
		env := testutil.NewTestEnvironment(t)
		app := testutil.NewConsumer(t, env.Dir("app")).Build()

		_, err := newInstaller(env).Remove(context.Background(), installer.RemoveOptions{WorkingDir: app})
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}
