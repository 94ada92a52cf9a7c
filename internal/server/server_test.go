package server

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"github.com/organic-programming/sophia-kin/internal/transport"
	"github.com/organic-programming/sophia-kin/pkg/family"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

// startTestServer launches the service over an in-memory bufconn.
// Returns a ready-to-use client and a cleanup function.
func startTestServer(t *testing.T, root string) (*Client, func()) {
	t.Helper()

	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer()
	RegisterKinServiceServer(s, New(root))

	go func() { _ = s.Serve(lis) }()

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}

	cleanup := func() {
		conn.Close()
		s.Stop()
	}
	return NewClient(conn), cleanup
}

// seedPerson writes a PERSON.md in root/<name>/.
func seedPerson(t *testing.T, root, uuid, name, gender, mother, father string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := fmt.Sprintf("---\nuuid: %q\nname: %q\ngender: %q\nmother: %q\nfather: %q\nborn: \"1900-01-01\"\ngenerated_by: \"test\"\n---\n# %s\n",
		uuid, name, gender, mother, father, name)
	if err := os.WriteFile(filepath.Join(dir, family.RecordFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// seedFamily writes kid <- (mom, dad), mom <- (gran, grandpa).
func seedFamily(t *testing.T, root string) {
	t.Helper()
	seedPerson(t, root, "gran-0001", "gran", "F", "", "")
	seedPerson(t, root, "grandpa-0002", "grandpa", "M", "", "")
	seedPerson(t, root, "mom-0003", "mom", "F", "gran-0001", "grandpa-0002")
	seedPerson(t, root, "dad-0004", "dad", "M", "", "")
	seedPerson(t, root, "kid-0005", "kid", "NA", "mom-0003", "dad-0004")
}

func TestListPersons(t *testing.T) {
	root := t.TempDir()
	seedPerson(t, root, "list-uuid-1", "Alpha", "F", "", "")
	seedPerson(t, root, "list-uuid-2", "Beta", "M", "", "")

	client, cleanup := startTestServer(t, root)
	defer cleanup()

	entries, err := client.ListPersons(context.Background(), "")
	if err != nil {
		t.Fatalf("ListPersons failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListPersons returned %d entries, want 2", len(entries))
	}
	if entries[0].Name != "Alpha" || entries[1].Name != "Beta" {
		t.Errorf("entries not sorted by name: %q, %q", entries[0].Name, entries[1].Name)
	}
	if entries[0].RelativePath != "Alpha" {
		t.Errorf("RelativePath = %q, want %q", entries[0].RelativePath, "Alpha")
	}
}

func TestListPersonsEmpty(t *testing.T) {
	client, cleanup := startTestServer(t, t.TempDir())
	defer cleanup()

	entries, err := client.ListPersons(context.Background(), "")
	if err != nil {
		t.Fatalf("ListPersons failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("ListPersons returned %d entries, want 0", len(entries))
	}
}

func TestListPersonsRootOverride(t *testing.T) {
	other := t.TempDir()
	seedPerson(t, other, "other-uuid", "Other", "M", "", "")

	client, cleanup := startTestServer(t, t.TempDir())
	defer cleanup()

	entries, err := client.ListPersons(context.Background(), other)
	if err != nil {
		t.Fatalf("ListPersons failed: %v", err)
	}
	if len(entries) != 1 || entries[0].UUID != "other-uuid" {
		t.Fatalf("ListPersons(root_dir) = %+v, want the single Other record", entries)
	}
}

func TestShowPerson(t *testing.T) {
	root := t.TempDir()
	seedFamily(t, root)

	client, cleanup := startTestServer(t, root)
	defer cleanup()

	resp, err := client.ShowPerson(context.Background(), "kid-0005")
	if err != nil {
		t.Fatalf("ShowPerson failed: %v", err)
	}
	if resp.Person.Name != "kid" {
		t.Errorf("Name = %q, want %q", resp.Person.Name, "kid")
	}
	if resp.Person.Mother != "mom-0003" || resp.Person.Father != "dad-0004" {
		t.Errorf("parents = %q/%q, want mom-0003/dad-0004", resp.Person.Mother, resp.Person.Father)
	}
	if resp.RawContent == "" {
		t.Error("RawContent must not be empty")
	}
}

func TestShowPersonPrefix(t *testing.T) {
	root := t.TempDir()
	seedPerson(t, root, "prefix-abcd-1234", "Delta", "M", "", "")

	client, cleanup := startTestServer(t, root)
	defer cleanup()

	resp, err := client.ShowPerson(context.Background(), "prefix-abcd")
	if err != nil {
		t.Fatalf("ShowPerson prefix failed: %v", err)
	}
	if resp.Person.UUID != "prefix-abcd-1234" {
		t.Errorf("UUID = %q, want %q", resp.Person.UUID, "prefix-abcd-1234")
	}
}

func TestCreatePerson(t *testing.T) {
	root := t.TempDir()
	seedFamily(t, root)

	client, cleanup := startTestServer(t, root)
	defer cleanup()

	resp, err := client.CreatePerson(context.Background(), CreateRequest{
		Name:   "baby",
		Gender: "female",
		Mother: "mom-0003",
		Father: "dad",
	})
	if err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}
	if resp.Person.UUID == "" {
		t.Error("UUID must not be empty")
	}
	if resp.Person.Gender != "F" {
		t.Errorf("Gender = %q, want canonical %q", resp.Person.Gender, "F")
	}
	if resp.Person.Father != "dad-0004" {
		t.Errorf("Father = %q, want prefix resolved to %q", resp.Person.Father, "dad-0004")
	}

	data, err := os.ReadFile(resp.FilePath)
	if err != nil {
		t.Fatalf("PERSON.md not created at %s: %v", resp.FilePath, err)
	}
	parsed, _, err := family.ParseFrontmatter(data)
	if err != nil {
		t.Fatalf("created PERSON.md is not parseable: %v", err)
	}
	if parsed.UUID != resp.Person.UUID || parsed.Mother != "mom-0003" {
		t.Errorf("parsed record = %+v", parsed)
	}

	// The new person is now part of the tree.
	ancestors, err := client.Ancestors(context.Background(), resp.Person.UUID, 2, 2)
	if err != nil {
		t.Fatalf("Ancestors failed: %v", err)
	}
	if len(ancestors) != 2 {
		t.Fatalf("grandparents of new person = %+v, want gran and grandpa", ancestors)
	}
}

func TestCreatePersonDefaultOutputDir(t *testing.T) {
	root := t.TempDir()

	client, cleanup := startTestServer(t, root)
	defer cleanup()

	resp, err := client.CreatePerson(context.Background(), CreateRequest{Name: "Ada Lovelace", Gender: "f"})
	if err != nil {
		t.Fatalf("CreatePerson failed: %v", err)
	}
	wantDir := filepath.Join(root, "persons")
	if filepath.Dir(filepath.Dir(resp.FilePath)) != wantDir {
		t.Errorf("FilePath = %q, want under %q", resp.FilePath, wantDir)
	}
}

func TestAncestors(t *testing.T) {
	root := t.TempDir()
	seedFamily(t, root)

	client, cleanup := startTestServer(t, root)
	defer cleanup()

	all, err := client.Ancestors(context.Background(), "kid-0005", 0, 0)
	if err != nil {
		t.Fatalf("Ancestors failed: %v", err)
	}
	want := []struct {
		name  string
		depth int
	}{{"dad", 1}, {"mom", 1}, {"gran", 2}, {"grandpa", 2}}
	if len(all) != len(want) {
		t.Fatalf("Ancestors returned %d entries, want %d: %+v", len(all), len(want), all)
	}
	for i, w := range want {
		if all[i].Name != w.name || all[i].Depth != w.depth {
			t.Errorf("ancestor[%d] = %s@%d, want %s@%d", i, all[i].Name, all[i].Depth, w.name, w.depth)
		}
	}

	parents, err := client.Ancestors(context.Background(), "kid", 1, 1)
	if err != nil {
		t.Fatalf("Ancestors(1,1) failed: %v", err)
	}
	if len(parents) != 2 {
		t.Errorf("Ancestors(1,1) returned %d entries, want 2", len(parents))
	}
}

func TestAncestorsIgnoresBrokenRecords(t *testing.T) {
	root := t.TempDir()
	seedFamily(t, root)
	// A father of the wrong gender: the edge is refused, the rest loads.
	seedPerson(t, root, "odd-0006", "odd", "M", "", "gran-0001")

	client, cleanup := startTestServer(t, root)
	defer cleanup()

	all, err := client.Ancestors(context.Background(), "odd-0006", 0, 0)
	if err != nil {
		t.Fatalf("Ancestors failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("odd has %d ancestors, want 0", len(all))
	}
}

// --- ListenAndServe ---

func TestListenAndServePortConflict(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer lis.Close()

	port := lis.Addr().(*net.TCPAddr).Port
	err = ListenAndServe(context.Background(), fmt.Sprintf("tcp://127.0.0.1:%d", port), t.TempDir(), true)
	if err == nil {
		t.Fatal("expected error for port conflict")
	}
}

func TestListenAndServeBadURI(t *testing.T) {
	if err := ListenAndServe(context.Background(), "carrier-pigeon://", t.TempDir(), false); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

func TestListenAndServeStartStop(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "kin.sock")
	root := t.TempDir()
	seedPerson(t, root, "sock-uuid", "Sock", "F", "", "")

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- ListenAndServe(ctx, "unix://"+sock, root, true)
	}()

	var conn *grpc.ClientConn
	var entries []PersonEntry
	var err error
	for i := 0; i < 50; i++ {
		conn, err = grpc.NewClient("unix://"+sock, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err == nil {
			entries, err = NewClient(conn).ListPersons(context.Background(), "")
			if err == nil {
				break
			}
			conn.Close()
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never answered: %v", err)
	}
	defer conn.Close()
	if len(entries) != 1 {
		t.Errorf("ListPersons returned %d entries, want 1", len(entries))
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("ListenAndServe returned %v after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not stop after cancel")
	}
}

// --- mem:// transport ---

func TestMemTransport(t *testing.T) {
	root := t.TempDir()
	seedPerson(t, root, "mem-uuid-1", "MemTest", "F", "", "")

	mem := transport.NewMemListener()
	s := grpc.NewServer()
	RegisterKinServiceServer(s, New(root))
	go func() { _ = s.Serve(mem) }()
	defer s.Stop()

	conn, err := grpc.NewClient(
		"passthrough:///mem",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return mem.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	entries, err := NewClient(conn).ListPersons(context.Background(), "")
	if err != nil {
		t.Fatalf("ListPersons over mem://: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("ListPersons returned %d entries, want 1", len(entries))
	}
}

// --- ws:// transport ---

func TestWSTransport(t *testing.T) {
	root := t.TempDir()
	seedPerson(t, root, "ws-uuid-1", "WSTest", "M", "", "")

	wsLis, err := transport.Listen("ws://127.0.0.1:0")
	if err != nil {
		t.Fatalf("ws listen: %v", err)
	}
	defer wsLis.Close()

	s := grpc.NewServer()
	RegisterKinServiceServer(s, New(root))
	reflection.Register(s)
	go func() { _ = s.Serve(wsLis) }()
	defer s.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, wsLis.Addr().String(), &websocket.DialOptions{
		Subprotocols: []string{transport.WebSocketSubprotocol},
	})
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	wsConn := websocket.NetConn(ctx, c, websocket.MessageBinary)

	dialed := false
	conn, err := grpc.NewClient(
		"passthrough:///ws",
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithContextDialer(func(_ context.Context, _ string) (net.Conn, error) {
			if dialed {
				return nil, fmt.Errorf("already consumed")
			}
			dialed = true
			return wsConn, nil
		}),
	)
	if err != nil {
		wsConn.Close()
		t.Fatalf("grpc client over ws: %v", err)
	}
	defer conn.Close()

	entries, err := NewClient(conn).ListPersons(ctx, "")
	if err != nil {
		t.Fatalf("ListPersons over ws://: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("ListPersons returned %d entries, want 1", len(entries))
	}
}
