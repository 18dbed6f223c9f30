package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/agentrep/trustledger/internal/config"
	"github.com/agentrep/trustledger/internal/eventbus"
	"github.com/agentrep/trustledger/internal/governance"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledger"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/oracle"
	"github.com/agentrep/trustledger/internal/protocol"
	"github.com/agentrep/trustledger/internal/slash"
	"github.com/agentrep/trustledger/internal/zkproof"
)

var (
	app = kingpin.New("trustledger", "Administer a trustledger reputation ledger directly on its storage")

	genesisCmd  = app.Command("genesis", "Initialize the ledger from a genesis file")
	genesisFile = genesisCmd.Arg("file", "Genesis YAML file").Required().ExistingFile()

	protocolCmd = app.Command("protocol", "Show the protocol parameters")

	agentCmd = app.Command("agent", "Agent commands")

	agentRegisterCmd   = agentCmd.Command("register", "Register an agent")
	agentRegisterOwner = agentRegisterCmd.Arg("owner", "Agent identity").Required().String()
	agentRegisterName  = agentRegisterCmd.Arg("name", "Display name").Required().String()

	agentShowCmd = agentCmd.Command("show", "Show an agent profile")
	agentShowID  = agentShowCmd.Arg("owner", "Agent identity").Required().String()

	agentListCmd    = agentCmd.Command("list", "List agents")
	agentListLimit  = agentListCmd.Flag("limit", "Page size").Default("50").Int()
	agentListOffset = agentListCmd.Flag("offset", "Page offset").Default("0").Int()

	agentTaskCmd    = agentCmd.Command("task", "Record a completed task")
	agentTaskOwner  = agentTaskCmd.Arg("owner", "Agent identity").Required().String()
	agentTaskID     = agentTaskCmd.Arg("task-id", "Task identifier").Required().String()
	agentTaskAmount = agentTaskCmd.Arg("amount", "Reputation reward").Required().Uint64()

	vouchCmd      = app.Command("vouch", "Vouch for or against an agent")
	vouchVoucher  = vouchCmd.Arg("voucher", "Vouching agent").Required().String()
	vouchTarget   = vouchCmd.Arg("target", "Target agent").Required().String()
	vouchAmount   = vouchCmd.Arg("amount", "Staked amount").Required().Uint64()
	vouchNegative = vouchCmd.Flag("against", "Vouch against the target").Bool()

	withdrawCmd     = app.Command("withdraw", "Withdraw a vouch after its lockup")
	withdrawVoucher = withdrawCmd.Arg("voucher", "Vouching agent").Required().String()
	withdrawTarget  = withdrawCmd.Arg("target", "Target agent").Required().String()

	propagateCmd    = app.Command("propagate", "Propagate trust into an agent from its stored vouches")
	propagateTarget = propagateCmd.Arg("target", "Target agent").Required().String()

	decayCmd   = app.Command("decay", "Apply inactivity decay")
	decayOwner = decayCmd.Arg("owner", "Agent identity").Required().String()

	slashCmd      = app.Command("slash", "Slash an agent for misconduct")
	slashSlasher  = slashCmd.Arg("slasher", "Reporting agent").Required().String()
	slashTarget   = slashCmd.Arg("target", "Offending agent").Required().String()
	slashEvidence = slashCmd.Arg("evidence", "Hex-encoded 32-byte evidence hash").Required().String()

	proposalCmd = app.Command("proposal", "Governance commands")

	proposalCreateCmd      = proposalCmd.Command("create", "Open a proposal")
	proposalCreateProposer = proposalCreateCmd.Arg("proposer", "Proposing agent").Required().String()
	proposalCreateType     = proposalCreateCmd.Arg("type", "Proposal type").Required().Enum(proposalTypes()...)
	proposalCreateValue    = proposalCreateCmd.Arg("value", "New parameter value").Required().Uint64()
	proposalCreateDesc     = proposalCreateCmd.Flag("description", "Description").Short('d').String()

	proposalVoteCmd     = proposalCmd.Command("vote", "Vote on a proposal")
	proposalVoteID      = proposalVoteCmd.Arg("id", "Proposal ID").Required().String()
	proposalVoteVoter   = proposalVoteCmd.Arg("voter", "Voting agent").Required().String()
	proposalVoteAgainst = proposalVoteCmd.Flag("against", "Vote against").Bool()

	proposalExecuteCmd = proposalCmd.Command("execute", "Execute a passed proposal")
	proposalExecuteID  = proposalExecuteCmd.Arg("id", "Proposal ID").Required().String()

	proposalPreviewCmd = proposalCmd.Command("preview", "Show the parameter diff a proposal would apply")
	proposalPreviewID  = proposalPreviewCmd.Arg("id", "Proposal ID").Required().String()

	proposalShowCmd = proposalCmd.Command("show", "Show a proposal and its votes")
	proposalShowID  = proposalShowCmd.Arg("id", "Proposal ID").Required().String()

	proposalListCmd = proposalCmd.Command("list", "List proposals")

	oracleCmd = app.Command("oracle", "Oracle commands")

	oracleInitCmd       = oracleCmd.Command("init", "Initialize the oracle registry")
	oracleInitAuthority = oracleInitCmd.Arg("authority", "Registry authority").Required().String()

	oracleAddCmd    = oracleCmd.Command("add", "Authorize an oracle")
	oracleAddCaller = oracleAddCmd.Arg("authority", "Registry authority").Required().String()
	oracleAddID     = oracleAddCmd.Arg("oracle", "Oracle identity").Required().String()

	oracleAttestCmd      = oracleCmd.Command("attest", "Submit an attestation")
	oracleAttestOracle   = oracleAttestCmd.Arg("oracle", "Oracle identity").Required().String()
	oracleAttestAgent    = oracleAttestCmd.Arg("agent", "Agent identity").Required().String()
	oracleAttestCategory = oracleAttestCmd.Arg("category", "Achievement category").Required().Enum(categories()...)
	oracleAttestAmount   = oracleAttestCmd.Arg("amount", "Reputation reward").Required().Uint64()
	oracleAttestHash     = oracleAttestCmd.Flag("metadata-hash", "Hex-encoded 32-byte metadata hash").Default(zeroHash).String()

	badgeCmd = app.Command("badge", "Badge commands")

	badgeMintCmd   = badgeCmd.Command("mint", "Mint an agent's badge")
	badgeMintAgent = badgeMintCmd.Arg("agent", "Agent identity").Required().String()
	badgeMintURI   = badgeMintCmd.Arg("uri", "Metadata URI").Default("").String()

	badgeUpgradeCmd   = badgeCmd.Command("upgrade", "Upgrade a badge to the agent's current level")
	badgeUpgradeAgent = badgeUpgradeCmd.Arg("agent", "Agent identity").Required().String()

	badgeShowCmd   = badgeCmd.Command("show", "Verify an agent's badge")
	badgeShowAgent = badgeShowCmd.Arg("agent", "Agent identity").Required().String()

	zkCmd = app.Command("zk", "Proof commands")

	zkCommitCmd   = zkCmd.Command("commit", "Compute a reputation commitment")
	zkCommitScore = zkCommitCmd.Arg("score", "Reputation score").Required().Uint64()
	zkCommitNonce = zkCommitCmd.Arg("nonce", "Nonce").Required().Uint64()

	zkProofsCmd   = zkCmd.Command("list", "List an agent's proof records")
	zkProofsAgent = zkProofsCmd.Arg("agent", "Agent identity").Required().String()

	eventsCmd  = app.Command("events", "Show archived ledger events for a day")
	eventsDay  = eventsCmd.Flag("day", "Day as YYYY-MM-DD (UTC)").Default(time.Now().UTC().Format(time.DateOnly)).String()
	eventsType = eventsCmd.Flag("type", "Only events of this type").String()
)

const zeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

func proposalTypes() []string {
	out := make([]string, len(governance.ProposalTypes))
	for i, t := range governance.ProposalTypes {
		out[i] = string(t)
	}
	return out
}

func categories() []string {
	out := make([]string, len(oracle.Categories))
	for i, c := range oracle.Categories {
		out[i] = string(c)
	}
	return out
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	env, err := config.LoadStorageEnv()
	if err != nil {
		fail(err)
	}
	store, err := config.OpenStorage(ctx, env)
	if err != nil {
		fail(err)
	}
	bus := eventbus.New()
	archive := eventbus.NewArchive(bus, store)
	_, events := bus.Subscribe(64)
	l := ledger.New(store, ledger.WithEventBus(bus))

	if command == eventsCmd.FullCommand() {
		err = listEvents(ctx, archive)
	} else {
		err = run(ctx, l, command)
	}
	if err != nil {
		fail(err)
	}
	archivePending(ctx, archive, events)
}

// archivePending stores the events this invocation committed.
func archivePending(ctx context.Context, archive *eventbus.Archive, events <-chan *eventbus.Event) {
	for {
		select {
		case e := <-events:
			if err := archive.Write(ctx, e); err != nil {
				failure(err, 0)
			}
		default:
			return
		}
	}
}

func run(ctx context.Context, l *ledger.Ledger, command string) error {
	id := func(s string) identity.ID { return identity.ID(s) }

	switch command {
	case genesisCmd.FullCommand():
		g, err := protocol.LoadGenesis(*genesisFile)
		if err != nil {
			return err
		}
		if err := l.Genesis(ctx, g); err != nil {
			return err
		}
		success("ledger initialized")
		return show(g)

	case protocolCmd.FullCommand():
		return result(l.Config(ctx))

	case agentRegisterCmd.FullCommand():
		return result(l.RegisterAgent(ctx, id(*agentRegisterOwner), *agentRegisterName))
	case agentShowCmd.FullCommand():
		return result(l.GetAgent(ctx, id(*agentShowID)))
	case agentListCmd.FullCommand():
		agents, total, err := l.ListAgents(ctx, *agentListLimit, *agentListOffset)
		if err != nil {
			return err
		}
		heading(fmt.Sprintf("%d of %d agents", len(agents), total))
		for _, a := range agents {
			row(a.Owner.String(), fmt.Sprintf("%d", a.ReputationScore), activeLabel(a.IsActive))
		}
		return nil
	case agentTaskCmd.FullCommand():
		return result(l.CompleteTask(ctx, id(*agentTaskOwner), *agentTaskID, *agentTaskAmount))

	case vouchCmd.FullCommand():
		return result(l.Vouch(ctx, id(*vouchVoucher), id(*vouchTarget), *vouchAmount, !*vouchNegative))
	case withdrawCmd.FullCommand():
		return result(l.WithdrawVouch(ctx, id(*withdrawVoucher), id(*withdrawTarget)))
	case propagateCmd.FullCommand():
		return result(l.PropagateTrust(ctx, id(*propagateTarget), nil))
	case decayCmd.FullCommand():
		return result(l.ApplyDecay(ctx, id(*decayOwner)))
	case slashCmd.FullCommand():
		evidence, err := slash.ParseEvidenceHash(*slashEvidence)
		if err != nil {
			return err
		}
		return result(l.SlashAgent(ctx, id(*slashSlasher), id(*slashTarget), evidence))

	case proposalCreateCmd.FullCommand():
		return result(l.CreateProposal(ctx, id(*proposalCreateProposer), governance.ProposalType(*proposalCreateType), *proposalCreateValue, *proposalCreateDesc))
	case proposalVoteCmd.FullCommand():
		return result(l.CastVote(ctx, *proposalVoteID, id(*proposalVoteVoter), !*proposalVoteAgainst))
	case proposalExecuteCmd.FullCommand():
		p, cfg, err := l.ExecuteProposal(ctx, *proposalExecuteID)
		if err != nil {
			return err
		}
		success(fmt.Sprintf("proposal %s executed, protocol revision %d", p.ID, cfg.Revision))
		return show(cfg)
	case proposalPreviewCmd.FullCommand():
		diff, err := l.PreviewProposal(ctx, *proposalPreviewID)
		if err != nil {
			return err
		}
		printDiff(diff)
		return nil
	case proposalShowCmd.FullCommand():
		p, err := l.GetProposal(ctx, *proposalShowID)
		if err != nil {
			return err
		}
		votes, err := l.ListVotes(ctx, *proposalShowID)
		if err != nil {
			return err
		}
		heading(fmt.Sprintf("proposal %s (%s)", p.ID, p.Status))
		if err := show(p.Proposal); err != nil {
			return err
		}
		heading("votes")
		for _, v := range votes {
			side := "against"
			if v.IsFor {
				side = "for"
			}
			row(v.Voter.String(), side, fmt.Sprintf("%d", v.VoteWeight))
		}
		return nil
	case proposalListCmd.FullCommand():
		ps, total, err := l.ListProposals(ctx, 0, 0)
		if err != nil {
			return err
		}
		heading(fmt.Sprintf("%d proposals", total))
		for _, p := range ps {
			row(p.ID, string(p.Type), string(p.Status))
		}
		return nil

	case oracleInitCmd.FullCommand():
		return result(l.InitializeRegistry(ctx, id(*oracleInitAuthority)))
	case oracleAddCmd.FullCommand():
		return result(l.AddOracle(ctx, id(*oracleAddCaller), id(*oracleAddID)))
	case oracleAttestCmd.FullCommand():
		hash, err := oracle.ParseMetadataHash(*oracleAttestHash)
		if err != nil {
			return err
		}
		return result(l.SubmitAttestation(ctx, id(*oracleAttestAgent), oracle.Submission{
			Oracle:       id(*oracleAttestOracle),
			Category:     oracle.Category(*oracleAttestCategory),
			MetadataHash: hash,
			Amount:       *oracleAttestAmount,
		}))

	case badgeMintCmd.FullCommand():
		return result(l.MintBadge(ctx, id(*badgeMintAgent), *badgeMintURI))
	case badgeUpgradeCmd.FullCommand():
		b, prev, err := l.UpgradeBadge(ctx, id(*badgeUpgradeAgent))
		if err != nil {
			return err
		}
		success(fmt.Sprintf("badge upgraded from %s to %s", prev, b.Level))
		return show(b)
	case badgeShowCmd.FullCommand():
		return result(l.VerifyBadge(ctx, id(*badgeShowAgent)))

	case zkCommitCmd.FullCommand():
		fmt.Println(zkproof.Commitment(*zkCommitScore, *zkCommitNonce))
		return nil
	case zkProofsCmd.FullCommand():
		return result(l.ListProofs(ctx, id(*zkProofsAgent)))
	}
	return fmt.Errorf("unknown command %q", command)
}

func listEvents(ctx context.Context, archive *eventbus.Archive) error {
	day, err := time.Parse(time.DateOnly, *eventsDay)
	if err != nil {
		return fmt.Errorf("invalid day %q: %w", *eventsDay, err)
	}
	var events []*eventbus.Event
	if *eventsType != "" {
		events, err = archive.ReadDayByType(ctx, day, eventbus.Type(*eventsType))
	} else {
		events, err = archive.ReadDay(ctx, day)
	}
	if err != nil {
		return err
	}
	heading(fmt.Sprintf("%d events on %s", len(events), *eventsDay))
	for _, e := range events {
		row(time.Unix(e.CreatedAt, 0).UTC().Format(time.TimeOnly), string(e.Type), e.ResourceID)
	}
	return nil
}

func fail(err error) {
	failure(err, ledgererr.KindOf(err))
	os.Exit(1)
}
