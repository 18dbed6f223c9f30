package ledger

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/governance"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/oracle"
	"github.com/agentrep/trustledger/internal/slash"
	"github.com/agentrep/trustledger/internal/trust"
	"github.com/agentrep/trustledger/internal/zkproof"
	"github.com/agentrep/trustledger/pkg/cerr"
)

// Server exposes the ledger as JSON over HTTP. Callers name the acting
// identity in the request; authenticating it is the gateway's job.
type Server struct {
	ledger *Ledger
}

func NewServer(l *Ledger) *Server {
	return &Server{ledger: l}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/protocol", s.getProtocol)
	r.Post("/commitments", s.commitment)

	r.Route("/agents", func(r chi.Router) {
		r.Post("/", s.registerAgent)
		r.Get("/", s.listAgents)
		r.Route("/{agentID}", func(r chi.Router) {
			r.Get("/", s.getAgent)
			r.Get("/reputation", s.getReputation)
			r.Post("/tasks", s.completeTask)
			r.Post("/decay", s.applyDecay)
			r.Post("/propagate", s.propagateTrust)
			r.Post("/slash", s.slashAgent)
			r.Get("/vouches", s.listVouches)
			r.Post("/vouches", s.vouch)
			r.Delete("/vouches/{voucherID}", s.withdrawVouch)
			r.Get("/attestations", s.listAttestations)
			r.Post("/attestations", s.submitAttestation)
			r.Get("/badge", s.verifyBadge)
			r.Post("/badge", s.mintBadge)
			r.Post("/badge/upgrade", s.upgradeBadge)
			r.Get("/proofs", s.listProofs)
			r.Post("/proofs", s.submitProof)
			r.Get("/proofs/{proofID}", s.getProof)
		})
	})

	r.Route("/proposals", func(r chi.Router) {
		r.Post("/", s.createProposal)
		r.Get("/", s.listProposals)
		r.Route("/{proposalID}", func(r chi.Router) {
			r.Get("/", s.getProposal)
			r.Get("/preview", s.previewProposal)
			r.Get("/votes", s.listVotes)
			r.Post("/votes", s.castVote)
			r.Post("/execute", s.executeProposal)
		})
	})

	r.Route("/oracles", func(r chi.Router) {
		r.Get("/", s.getRegistry)
		r.Post("/", s.addOracle)
		r.Post("/registry", s.initializeRegistry)
	})

	r.Post("/verification-key", s.initializeVerificationKey)
}

func decode(r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		cerr.SetNewJSONError(r.Context(), cerr.InvalidArgument, "malformed request body", err)
		return false
	}
	return true
}

func respond(r *http.Request, status int, v any, err error) {
	if err != nil {
		cerr.SetJSONError(r.Context(), ledgererr.ToCerr(err))
		return
	}
	if status == http.StatusCreated {
		cerr.SetJSONCreated(r.Context(), v)
		return
	}
	cerr.SetJSONResponse(r.Context(), v)
}

func agentParam(r *http.Request) identity.ID {
	return identity.ID(chi.URLParam(r, "agentID"))
}

func page(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func (s *Server) getProtocol(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.ledger.Config(r.Context())
	respond(r, http.StatusOK, cfg, err)
}

func (s *Server) commitment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Score uint64 `json:"score"`
		Nonce uint64 `json:"nonce"`
	}
	if !decode(r, &req) {
		return
	}
	respond(r, http.StatusOK, map[string]zkproof.Hash{"commitment": zkproof.Commitment(req.Score, req.Nonce)}, nil)
}

func (s *Server) registerAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Owner identity.ID `json:"owner"`
		Name  string      `json:"name"`
	}
	if !decode(r, &req) {
		return
	}
	p, err := s.ledger.RegisterAgent(r.Context(), req.Owner, req.Name)
	respond(r, http.StatusCreated, p, err)
}

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	items, total, err := s.ledger.ListAgents(r.Context(), limit, offset)
	respond(r, http.StatusOK, listResponse[*agent.Profile]{Items: items, Total: total}, err)
}

func (s *Server) getAgent(w http.ResponseWriter, r *http.Request) {
	p, err := s.ledger.GetAgent(r.Context(), agentParam(r))
	respond(r, http.StatusOK, p, err)
}

func (s *Server) getReputation(w http.ResponseWriter, r *http.Request) {
	score, err := s.ledger.GetReputation(r.Context(), agentParam(r))
	respond(r, http.StatusOK, map[string]uint64{"reputation_score": score}, err)
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID string `json:"task_id"`
		Amount uint64 `json:"amount"`
	}
	if !decode(r, &req) {
		return
	}
	p, err := s.ledger.CompleteTask(r.Context(), agentParam(r), req.TaskID, req.Amount)
	respond(r, http.StatusOK, p, err)
}

func (s *Server) applyDecay(w http.ResponseWriter, r *http.Request) {
	res, err := s.ledger.ApplyDecay(r.Context(), agentParam(r))
	respond(r, http.StatusOK, res, err)
}

func (s *Server) propagateTrust(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Incoming []trust.Incoming `json:"incoming"`
	}
	if r.ContentLength != 0 && !decode(r, &req) {
		return
	}
	res, err := s.ledger.PropagateTrust(r.Context(), agentParam(r), req.Incoming)
	respond(r, http.StatusOK, res, err)
}

func (s *Server) slashAgent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Slasher      identity.ID `json:"slasher"`
		EvidenceHash string      `json:"evidence_hash"`
	}
	if !decode(r, &req) {
		return
	}
	evidence, err := slash.ParseEvidenceHash(req.EvidenceHash)
	if err != nil {
		respond(r, 0, nil, err)
		return
	}
	res, err := s.ledger.SlashAgent(r.Context(), req.Slasher, agentParam(r), evidence)
	respond(r, http.StatusOK, res, err)
}

func (s *Server) listVouches(w http.ResponseWriter, r *http.Request) {
	recs, err := s.ledger.ListVouches(r.Context(), agentParam(r))
	respond(r, http.StatusOK, recs, err)
}

func (s *Server) vouch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Voucher  identity.ID `json:"voucher"`
		Amount   uint64      `json:"amount"`
		Positive bool        `json:"positive"`
	}
	if !decode(r, &req) {
		return
	}
	rec, err := s.ledger.Vouch(r.Context(), req.Voucher, agentParam(r), req.Amount, req.Positive)
	respond(r, http.StatusOK, rec, err)
}

func (s *Server) withdrawVouch(w http.ResponseWriter, r *http.Request) {
	voucher := identity.ID(chi.URLParam(r, "voucherID"))
	res, err := s.ledger.WithdrawVouch(r.Context(), voucher, agentParam(r))
	respond(r, http.StatusOK, res, err)
}

func (s *Server) listAttestations(w http.ResponseWriter, r *http.Request) {
	atts, err := s.ledger.ListAttestations(r.Context(), agentParam(r))
	respond(r, http.StatusOK, atts, err)
}

func (s *Server) submitAttestation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Oracle       identity.ID         `json:"oracle"`
		Category     string              `json:"category"`
		MetadataHash oracle.MetadataHash `json:"metadata_hash"`
		Amount       uint64              `json:"amount"`
	}
	if !decode(r, &req) {
		return
	}
	category, err := oracle.ParseCategory(req.Category)
	if err != nil {
		respond(r, 0, nil, err)
		return
	}
	att, err := s.ledger.SubmitAttestation(r.Context(), agentParam(r), oracle.Submission{
		Oracle:       req.Oracle,
		Category:     category,
		MetadataHash: req.MetadataHash,
		Amount:       req.Amount,
	})
	respond(r, http.StatusCreated, att, err)
}

func (s *Server) verifyBadge(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.VerifyBadge(r.Context(), agentParam(r))
	respond(r, http.StatusOK, b, err)
}

func (s *Server) mintBadge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MetadataURI string `json:"metadata_uri"`
	}
	if !decode(r, &req) {
		return
	}
	b, err := s.ledger.MintBadge(r.Context(), agentParam(r), req.MetadataURI)
	respond(r, http.StatusCreated, b, err)
}

func (s *Server) upgradeBadge(w http.ResponseWriter, r *http.Request) {
	b, prev, err := s.ledger.UpgradeBadge(r.Context(), agentParam(r))
	if err != nil {
		respond(r, 0, nil, err)
		return
	}
	respond(r, http.StatusOK, map[string]any{"badge": b, "previous_level": prev}, nil)
}

func (s *Server) listProofs(w http.ResponseWriter, r *http.Request) {
	recs, err := s.ledger.ListProofs(r.Context(), agentParam(r))
	respond(r, http.StatusOK, recs, err)
}

func (s *Server) getProof(w http.ResponseWriter, r *http.Request) {
	rec, err := s.ledger.GetProof(r.Context(), agentParam(r), chi.URLParam(r, "proofID"))
	respond(r, http.StatusOK, rec, err)
}

func (s *Server) submitProof(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Statement  zkproof.Statement `json:"statement"`
		Proof      []byte            `json:"proof"`
		ProofLen   int               `json:"proof_len"`
		Inputs     []uint64          `json:"inputs"`
		InputCount int               `json:"input_count"`
	}
	if !decode(r, &req) {
		return
	}
	rec, err := s.ledger.SubmitProof(r.Context(), agentParam(r), req.Statement,
		zkproof.Proof{Data: req.Proof, Len: req.ProofLen},
		zkproof.Inputs{Values: req.Inputs, Count: req.InputCount})
	respond(r, http.StatusCreated, rec, err)
}

func (s *Server) createProposal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Proposer    identity.ID `json:"proposer"`
		Type        string      `json:"proposal_type"`
		NewValue    uint64      `json:"new_value"`
		Description string      `json:"description"`
	}
	if !decode(r, &req) {
		return
	}
	typ, err := governance.ParseProposalType(req.Type)
	if err != nil {
		respond(r, 0, nil, err)
		return
	}
	p, err := s.ledger.CreateProposal(r.Context(), req.Proposer, typ, req.NewValue, req.Description)
	respond(r, http.StatusCreated, p, err)
}

func (s *Server) listProposals(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	items, total, err := s.ledger.ListProposals(r.Context(), limit, offset)
	respond(r, http.StatusOK, listResponse[*ProposalView]{Items: items, Total: total}, err)
}

func (s *Server) getProposal(w http.ResponseWriter, r *http.Request) {
	p, err := s.ledger.GetProposal(r.Context(), chi.URLParam(r, "proposalID"))
	respond(r, http.StatusOK, p, err)
}

func (s *Server) previewProposal(w http.ResponseWriter, r *http.Request) {
	diff, err := s.ledger.PreviewProposal(r.Context(), chi.URLParam(r, "proposalID"))
	respond(r, http.StatusOK, map[string]string{"diff": diff}, err)
}

func (s *Server) listVotes(w http.ResponseWriter, r *http.Request) {
	votes, err := s.ledger.ListVotes(r.Context(), chi.URLParam(r, "proposalID"))
	respond(r, http.StatusOK, votes, err)
}

func (s *Server) castVote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Voter identity.ID `json:"voter"`
		IsFor bool        `json:"is_for"`
	}
	if !decode(r, &req) {
		return
	}
	p, err := s.ledger.CastVote(r.Context(), chi.URLParam(r, "proposalID"), req.Voter, req.IsFor)
	respond(r, http.StatusOK, p, err)
}

func (s *Server) executeProposal(w http.ResponseWriter, r *http.Request) {
	p, cfg, err := s.ledger.ExecuteProposal(r.Context(), chi.URLParam(r, "proposalID"))
	if err != nil {
		respond(r, 0, nil, err)
		return
	}
	respond(r, http.StatusOK, map[string]any{"proposal": p, "protocol": cfg}, nil)
}

func (s *Server) getRegistry(w http.ResponseWriter, r *http.Request) {
	reg, err := s.ledger.Registry(r.Context())
	respond(r, http.StatusOK, reg, err)
}

func (s *Server) addOracle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller identity.ID `json:"caller"`
		Oracle identity.ID `json:"oracle"`
	}
	if !decode(r, &req) {
		return
	}
	reg, err := s.ledger.AddOracle(r.Context(), req.Caller, req.Oracle)
	respond(r, http.StatusOK, reg, err)
}

func (s *Server) initializeRegistry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Authority identity.ID `json:"authority"`
	}
	if !decode(r, &req) {
		return
	}
	reg, err := s.ledger.InitializeRegistry(r.Context(), req.Authority)
	respond(r, http.StatusCreated, reg, err)
}

func (s *Server) initializeVerificationKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Authority   identity.ID  `json:"authority"`
		CircuitHash zkproof.Hash `json:"circuit_hash"`
		Key         []byte       `json:"key"`
		KeyLen      int          `json:"key_len"`
	}
	if !decode(r, &req) {
		return
	}
	k, err := s.ledger.InitializeVerificationKey(r.Context(), req.Authority, req.CircuitHash, req.Key, req.KeyLen)
	respond(r, http.StatusCreated, k, err)
}
